// Package activity reads extension API activity from the browser profile's
// activity log. Chrome writes the log to a SQLite database when launched with
// --enable-extension-activity-logging; the database stays locked while Chrome
// runs, so each read works on a temp copy.
package activity

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/extmon/extmon"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoDatabase when the profile has no activity log (yet)
var ErrNoDatabase = errors.New("extension activity database not found")

var databaseNames = []string{
	"Extension Activity",
	"Extension Activity Database",
	"extension_activity.db",
}

var tableNames = []string{"activitylog", "activity_log", "extension_activity"}

const readLimit = 1000

type logRow struct {
	ExtensionID string `gorm:"column:extension_id"`
	Time        int64  `gorm:"column:time"` // milliseconds since epoch
	ActionType  int    `gorm:"column:action_type"`
	APIName     string `gorm:"column:api_name"`
	Args        string `gorm:"column:args"`
	PageURL     string `gorm:"column:page_url"`
	ArgURL      string `gorm:"column:arg_url"`
}

// Reader polls the profile's activity database and returns records newer than
// the previous read. Implements extmon.ActivitySource.
type Reader struct {
	profilePath string
	lastRead    time.Time
}

// NewReader over a browser profile directory. Records older than the reader's
// creation time are never returned, the log may hold earlier sessions.
func NewReader(profilePath string) *Reader {
	return NewReaderSince(profilePath, time.Now())
}

// NewReaderSince with an explicit low-water mark
func NewReaderSince(profilePath string, since time.Time) *Reader {
	return &Reader{profilePath: profilePath, lastRead: since}
}

// NewActivities returns log records observed since the last call. A missing
// database or an unreadable copy yields an empty batch, the log appears only
// after the extension makes its first API call.
func (r *Reader) NewActivities() ([]*extmon.ActivityEvent, error) {
	dbPath := r.findDatabase()
	if dbPath == "" {
		return nil, nil
	}

	tempPath, err := r.copyForReading(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to copy activity database")
	}
	defer removeCopy(tempPath)

	rows, err := readRows(tempPath)
	if err != nil {
		return nil, err
	}

	batch := make([]*extmon.ActivityEvent, 0)
	maxSeen := r.lastRead
	for _, row := range rows {
		ts := time.UnixMilli(row.Time)
		if !ts.After(r.lastRead) {
			continue
		}
		if ts.After(maxSeen) {
			maxSeen = ts
		}
		batch = append(batch, &extmon.ActivityEvent{
			Timestamp:   ts,
			ExtensionID: row.ExtensionID,
			ActionType:  strconv.Itoa(row.ActionType),
			APIName:     row.APIName,
			Args:        row.Args,
			PageURL:     row.PageURL,
			ArgURL:      row.ArgURL,
		})
	}
	r.lastRead = maxSeen
	return batch, nil
}

func (r *Reader) findDatabase() string {
	for _, name := range databaseNames {
		path := filepath.Join(r.profilePath, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// copyForReading clones the database plus its -wal/-shm sidecars so reads
// don't race the browser's lock.
func (r *Reader) copyForReading(dbPath string) (string, error) {
	tempPath := filepath.Join(os.TempDir(),
		"extmon_activity_"+strconv.FormatInt(time.Now().UnixNano(), 10)+".db")
	if err := copyFile(dbPath, tempPath); err != nil {
		return "", err
	}
	// sidecars only exist while chrome holds the database open
	copyFile(dbPath+"-wal", tempPath+"-wal")
	copyFile(dbPath+"-shm", tempPath+"-shm")
	return tempPath, nil
}

func readRows(path string) ([]logRow, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open activity database copy")
	}
	defer func() {
		if sqlDB, derr := db.DB(); derr == nil {
			sqlDB.Close()
		}
	}()

	var rows []logRow
	for _, table := range tableNames {
		rows = rows[:0]
		result := db.Table(table).Order("time desc").Limit(readLimit).Find(&rows)
		if result.Error == nil {
			return rows, nil
		}
		log.Debug().Str("table", table).Err(result.Error).Msg("activity table read failed")
	}
	return nil, ErrNoDatabase
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func removeCopy(tempPath string) {
	os.Remove(tempPath)
	os.Remove(tempPath + "-wal")
	os.Remove(tempPath + "-shm")
}
