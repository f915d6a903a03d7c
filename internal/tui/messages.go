package tui

import "time"

type newsLoadedMsg struct {
	entries   []entry
	fetchedAt time.Time
	state     string
}

type newsErrMsg struct {
	err error
}

type refreshDoneMsg struct {
	err error
}
