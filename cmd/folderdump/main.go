package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/temirov/folderdump/internal/cli"
	"github.com/temirov/folderdump/internal/dump"
	"github.com/temirov/folderdump/internal/utils"
)

const reportedFailureExitCode = 1

// main is the entry point for the folderdump command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(utils.EmptyString)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	applicationExecutionError := cli.Execute(ctx)
	stop()
	if applicationExecutionError == nil {
		return
	}
	if errors.Is(applicationExecutionError, dump.ErrReported) {
		loggerInstance.Sync()
		os.Exit(reportedFailureExitCode)
	}
	loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
}
