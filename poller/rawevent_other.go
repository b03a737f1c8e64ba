//go:build !linux
// +build !linux

package poller

var (
	rawDataOffset = 8
	rawEventSize  = 16
)
