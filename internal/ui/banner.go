package ui

import (
	"github.com/pterm/pterm"
)

func PrintBanner(version string) {
	logo := `
    ____        _ __         ________              __
   / __ \____ _(_) /_  __   / ____/ /_  ___  _____/ /__
  / / / / __ '/ / / / / /  / /   / __ \/ _ \/ ___/ //_/
 / /_/ / /_/ / / / /_/ /  / /___/ / / /  __/ /__/ ,<
/_____/\__,_/_/_/\__, /   \____/_/ /_/\___/\___/_/|_|
                /____/
`
	pterm.FgCyan.Println(logo)
	pterm.DefaultCenter.Println(pterm.FgGray.Sprint(version + " - EC2 & key pair daily check"))
	pterm.Println()
}
