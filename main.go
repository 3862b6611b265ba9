package main

import (
	"github.com/ConserveLee/battle-idle/app/battle"
	"github.com/ConserveLee/battle-idle/app/tools"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
)

func main() {
	myApp := app.New()
	myWindow := myApp.NewWindow("Battle Idle Toolset")
	myWindow.Resize(fyne.NewSize(500, 600))

	// Create tabs for different features
	tabs := container.NewAppTabs(
		container.NewTabItem("自动战斗", battle.NewBattlePanel()),
		container.NewTabItem("工具箱", tools.NewToolsPanel(myWindow)),
	)

	tabs.SetTabLocation(container.TabLocationTop)

	myWindow.SetContent(tabs)
	myWindow.ShowAndRun()
}
