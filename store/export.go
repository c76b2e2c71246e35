package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/monitor"
)

// WriteReportFile dumps one report as indented JSON into dir, named by
// session id. Returns the written path.
func WriteReportFile(dir string, report *extmon.SessionReport) (string, error) {
	if report == nil {
		return "", errors.New("nil report")
	}
	if err := os.MkdirAll(dir, 0766); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode report")
	}
	path := filepath.Join(dir, report.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write report file")
	}
	return path, nil
}

// WriteHARFile dumps the archive as indented JSON into dir, named by session
// id with a .har suffix. Returns the written path.
func WriteHARFile(dir, sessionID string, har *monitor.HAR) (string, error) {
	if har == nil {
		return "", errors.New("nil archive")
	}
	if err := os.MkdirAll(dir, 0766); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(har, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode archive")
	}
	path := filepath.Join(dir, sessionID+".har")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "failed to write archive file")
	}
	return path, nil
}
