package storage

import (
	"fmt"
	json "github.com/goccy/go-json"
	"os"
	"path/filepath"
	apperrors "sensordigest/internal/errors"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/storage/interfaces"
	"sensordigest/internal/structures"
	"strings"
	"time"
)

type ArchiverInterface interface {
	Archive(now time.Time) ([]*models.ArchiveResult, error)
	Close()
}

// Archiver moves the oldest log rows out of the workbook into compressed JSON files.
type Archiver struct {
	config     *structures.Config
	workbook   interfaces.WorkbookInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewArchiver(config *structures.Config, workbook interfaces.WorkbookInterface, compressor interfaces.CompressorInterface, logger providers.Logger) ArchiverInterface {
	return &Archiver{
		config:     config,
		workbook:   workbook,
		compressor: compressor,
		logger:     logger,
	}
}

func (a *Archiver) Archive(now time.Time) ([]*models.ArchiveResult, error) {
	if !a.config.Archive.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(a.config.Archive.Dir, 0o755); err != nil {
		return nil, apperrors.NewStorageError("create archive dir", err)
	}

	var results []*models.ArchiveResult
	for _, sensor := range a.workbook.Sensors() {
		removed, err := a.workbook.TrimRecords(sensor, a.config.Archive.MaxRows)
		if err != nil {
			return results, err
		}
		if len(removed) == 0 {
			continue
		}

		fileName := filepath.Join(a.config.Archive.Dir, fmt.Sprintf("%s-%d.json.zst", safeFileName(sensor), now.Unix()))
		if err := a.saveToFile(fileName, removed); err != nil {
			return results, apperrors.NewStorageError("archive "+sensor, err)
		}
		a.logger.Infof(providers.TypeSweep, "Archived %d rows of %q to %s", len(removed), sensor, fileName)
		results = append(results, &models.ArchiveResult{Sensor: sensor, Rows: len(removed), File: fileName})
	}
	return results, nil
}

func (a *Archiver) saveToFile(fileName string, records []*models.SensorRecord) error {
	jsonData, err := json.Marshal(records)
	if err != nil {
		return err
	}
	data, err := a.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (a *Archiver) Close() {
	a.compressor.Close()
}

func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
