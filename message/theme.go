package message

import (
	"sshchat/theme"
	"sshchat/user"
)

func viewerTheme(viewer *user.User) (theme.Theme, bool) {
	if viewer == nil {
		return theme.Theme{}, false
	}
	return theme.Get(viewer.Theme)
}

func defaultTheme() (theme.Theme, bool) {
	return theme.Get(theme.Default)
}
