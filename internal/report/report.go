// Package report turns pipeline outcomes into user notifications and follow-up actions.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/folderdump/internal/services/clipboard"
	"github.com/temirov/folderdump/internal/tokenizer"
	"github.com/temirov/folderdump/internal/utils"
	"github.com/temirov/folderdump/internal/viewer"
)

const (
	successMessageFormat     = "rdump: created %s"
	detailsSeparator         = ", "
	tokensDetailFormat       = "%d tokens"
	failureMessageFormat     = "rdump failed with exit code %d. See %s for details."
	defaultLogLocation       = "the rdump output above"
	copiedMessageFormat      = "rdump: copied %s to the clipboard"
	errorOpenDumpFormat      = "open %s: %w"
	tokenCountFailureMessage = "token count failed"
)

// Options configures the follow-up actions performed after a successful dump.
type Options struct {
	OpenAfterCreate bool
	CopyToClipboard bool
	Opener          viewer.Opener
	Copier          clipboard.Copier
	// Counter adds a token count to the success message when set.
	Counter tokenizer.Counter
	// LogLocation names where the detailed rdump output can be found.
	LogLocation string
	Logger      *zap.Logger
}

// Reporter reports dump outcomes.
type Reporter struct {
	notifier Notifier
	options  Options
	logger   *zap.Logger
}

// NewReporter constructs a Reporter.
func NewReporter(notifier Notifier, options Options) *Reporter {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.LogLocation == "" {
		options.LogLocation = defaultLogLocation
	}
	return &Reporter{notifier: notifier, options: options, logger: logger}
}

// Success announces the produced file, then copies and opens it when configured.
func (reporter *Reporter) Success(ctx context.Context, outputPath string) error {
	reporter.notifier.Info(reporter.successMessage(outputPath))
	if reporter.options.CopyToClipboard && reporter.options.Copier != nil {
		if copyErr := clipboard.CopyFile(reporter.options.Copier, outputPath); copyErr != nil {
			return copyErr
		}
		reporter.notifier.Info(fmt.Sprintf(copiedMessageFormat, filepath.Base(outputPath)))
	}
	if reporter.options.OpenAfterCreate && reporter.options.Opener != nil {
		if openErr := reporter.options.Opener.Open(ctx, outputPath); openErr != nil {
			return fmt.Errorf(errorOpenDumpFormat, outputPath, openErr)
		}
	}
	return nil
}

// Failure reports a non-zero or missing exit code.
func (reporter *Reporter) Failure(exitCode int) {
	reporter.notifier.Error(fmt.Sprintf(failureMessageFormat, exitCode, reporter.options.LogLocation))
}

// Error reports any other failure with its description.
func (reporter *Reporter) Error(err error) {
	if err == nil {
		return
	}
	reporter.notifier.Error(err.Error())
}

func (reporter *Reporter) successMessage(outputPath string) string {
	message := fmt.Sprintf(successMessageFormat, filepath.Base(outputPath))
	var details []string
	if info, statErr := os.Stat(outputPath); statErr == nil {
		details = append(details, utils.FormatFileSize(info.Size()))
	}
	if reporter.options.Counter != nil {
		result, countErr := tokenizer.CountFile(reporter.options.Counter, outputPath)
		if countErr != nil {
			reporter.logger.Warn(tokenCountFailureMessage, zap.String("path", outputPath), zap.Error(countErr))
		} else if result.Counted {
			details = append(details, fmt.Sprintf(tokensDetailFormat, result.Tokens))
		}
	}
	if len(details) == 0 {
		return message
	}
	return message + " (" + strings.Join(details, detailsSeparator) + ")"
}
