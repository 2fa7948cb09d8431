package main

import (
	"os"
	"os/signal"
	"syscall"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"
	"github.com/ReaperX0402/Bean-there-admin/server"

	"github.com/medatechnology/goutil/simplelog"
)

func main() {
	simplelog.DEBUG_LEVEL = 1
	simplelog.LogThis("main", "=== "+cafeadmin.APP_NAME+" "+cafeadmin.APP_VERSION+" ===")

	console, err := cafeadmin.ConnectBackend()
	if err != nil {
		if err == &cafeadmin.ErrConfigMissing {
			// Unconfigured deployments still serve, data routes answer 503
			simplelog.LogErrorStr("main", err, "starting in configuration-absent mode")
		} else {
			simplelog.LogErrorAny("main", err, "cannot connect to backend, exiting")
			return
		}
	}

	console.PrintWelcomePretty()

	httpServer, alertMgr := server.CreateServer(console)

	// Shut the monitors and backend connection down on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		simplelog.LogThis("main", "shutting down")
		alertMgr.Stop()
		if err := console.Close(); err != nil {
			simplelog.LogErrorAny("main", err, "backend close failed")
		}
		os.Exit(0)
	}()

	if err := httpServer.Start(""); err != nil {
		simplelog.LogErrorAny("main", err, "http server stopped")
	}
}
