package tui

import (
	"math/big"
	"os/exec"
	"runtime"

	"seedwatch/pkg/units"
)

const masked = "****"

// displayAmount renders a base-coin amount in the active display unit.
func (m model) displayAmount(f *big.Float) string {
	if m.privacyMode {
		return masked
	}
	return units.FormatWithUnit(m.unit, m.node.Symbol, f, m.config.AmountDecimals, false)
}

func (m model) maskAddress(addr string) string {
	if m.privacyMode {
		return "0x**...**"
	}
	return addr
}

// openBrowser opens the specified URL in the default browser.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default: // "linux", "freebsd", "openbsd", "netbsd"
		cmd = "xdg-open"
	}
	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}
