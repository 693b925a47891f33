package alarmcli

import (
	"fmt"
	"log"

	"github.com/warpdl/warpalarm/common"
)

func tcpAddress() string {
	return fmt.Sprintf("%s:%d", common.TCPHost, common.TCPPort())
}

func debugLog(format string, args ...any) {
	if common.Debug() {
		log.Printf(format, args...)
	}
}
