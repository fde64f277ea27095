package shell

import (
	"github.com/fatih/color"
)

var (
	promptName = color.New(38, 5, 208) // 256-color orange
	promptDir  = color.New(color.FgBlue)
)

func (s *Shell) prompt() string {
	if !s.color {
		return "flame:" + s.cwd() + " $ "
	}
	return promptName.Sprint("flame") + ":" + promptDir.Sprint(s.cwd()) + " $ "
}
