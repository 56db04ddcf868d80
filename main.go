package main

import (
	"log"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title Library Management API
// @version 1.0
// @description This API provides books inventory management with fuzzy search capabilities.
// @contact.name API Support
// @host localhost:8080
// @BasePath /
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
