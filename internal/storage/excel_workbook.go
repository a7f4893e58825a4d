package storage

import (
	"fmt"
	"github.com/xuri/excelize/v2"
	"os"
	apperrors "sensordigest/internal/errors"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/storage/interfaces"
	"sensordigest/internal/structures"
	"sensordigest/internal/summary"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultCellColor = "#ffffff"

type anchor struct {
	sheet  string
	column int
	row    int
}

type ExcelWorkbook struct {
	mu     sync.Mutex
	path   string
	sheet  string
	layout string
	file   *excelize.File
	logger providers.Logger
}

func NewExcelWorkbook(conf *structures.Config, logger providers.Logger) (interfaces.WorkbookInterface, error) {
	f, err := excelize.OpenFile(conf.Workbook.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", conf.Workbook.Path, err)
	}

	sheet := conf.Workbook.SummarySheet
	if sheet == "" {
		sheet = "Summary"
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		_ = f.Close()
		return nil, fmt.Errorf("summary sheet %q not found in %s", sheet, conf.Workbook.Path)
	}

	layout := conf.Summary.TimeLayout
	if layout == "" {
		layout = time.RFC3339
	}

	logger.Infof(providers.TypeApp, "Workbook %s opened, summary sheet %q", conf.Workbook.Path, sheet)
	return &ExcelWorkbook{
		path:   conf.Workbook.Path,
		sheet:  sheet,
		layout: layout,
		file:   f,
		logger: logger,
	}, nil
}

// anchors resolves the workbook defined names to their top-left cell.
func (w *ExcelWorkbook) anchors() map[string]anchor {
	out := make(map[string]anchor)
	for _, dn := range w.file.GetDefinedName() {
		a, ok := parseRefersTo(dn.RefersTo, w.sheet)
		if !ok {
			continue
		}
		out[dn.Name] = a
	}
	return out
}

// parseRefersTo accepts "Summary!$A$3", "'My Sheet'!$A$3:$A$3" or "$A$3".
func parseRefersTo(ref, defaultSheet string) (anchor, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "=")
	sheet := defaultSheet
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		sheet = strings.Trim(ref[:i], "'")
		ref = ref[i+1:]
	}
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(ref, "$", ""))
	if err != nil {
		return anchor{}, false
	}
	return anchor{sheet: sheet, column: col, row: row}, true
}

// cellValue evaluates formula cells against the current workbook contents. The
// cached result of a formula is only used when it cannot be evaluated. Raw values
// keep dates as serial numbers.
func (w *ExcelWorkbook) cellValue(sheet string, col, row int, raw bool) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	opts := excelize.Options{RawCellValue: raw}
	if formula, err := w.file.GetCellFormula(sheet, cell); err == nil && formula != "" {
		v, err := w.file.CalcCellValue(sheet, cell, opts)
		if err == nil {
			return v, nil
		}
		w.logger.Warnf(providers.TypeApp, "Formula %s!%s (%s) not evaluated, using cached value: %s", sheet, cell, formula, err)
	}
	return w.file.GetCellValue(sheet, cell, opts)
}

func (w *ExcelWorkbook) cellColor(sheet string, col, row int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return defaultCellColor
	}
	styleID, err := w.file.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return defaultCellColor
	}
	style, err := w.file.GetStyle(styleID)
	if err != nil || style == nil || style.Fill.Pattern == 0 || len(style.Fill.Color) == 0 {
		return defaultCellColor
	}
	return normalizeColor(style.Fill.Color[0])
}

// normalizeColor maps "FF0000", "#FF0000" and ARGB "FFFF0000" to "#ff0000".
func normalizeColor(raw string) string {
	c := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if len(c) == 8 {
		c = c[2:]
	}
	if len(c) != 6 {
		return defaultCellColor
	}
	return "#" + c
}

func (w *ExcelWorkbook) Snapshot() (*models.SummarySnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, apperrors.NewStorageError("read summary sheet", err)
	}

	snap := &models.SummarySnapshot{Fields: make(map[string][]string)}
	if len(rows) > 0 {
		snap.Header = append([]string(nil), rows[0]...)
	}

	anchors := w.anchors()
	for _, name := range models.RowFields {
		a, ok := anchors[name]
		if !ok {
			continue
		}
		values := make([]string, len(snap.Header))
		for column := 1; column <= len(snap.Header); column++ {
			v, err := w.cellValue(a.sheet, a.column+column-1, a.row, true)
			if err != nil {
				return nil, apperrors.NewStorageError("read "+name, err)
			}
			values[column-1] = v
		}
		snap.Fields[name] = values
	}

	if a, ok := anchors[models.RegionLastSummary]; ok {
		if snap.LastSummary, err = w.cellValue(a.sheet, a.column, a.row, true); err != nil {
			return nil, apperrors.NewStorageError("read "+models.RegionLastSummary, err)
		}
	}
	if a, ok := anchors[models.RegionFrequency]; ok {
		if snap.SummaryFrequency, err = w.cellValue(a.sheet, a.column, a.row, true); err != nil {
			return nil, apperrors.NewStorageError("read "+models.RegionFrequency, err)
		}
	}

	if a, ok := anchors[models.RegionSummaryBlock]; ok {
		block, err := w.readBlock(a)
		if err != nil {
			return nil, apperrors.NewStorageError("read "+models.RegionSummaryBlock, err)
		}
		snap.Block = block
	}
	return snap, nil
}

// readBlock reads the grid below the SummaryBlock anchor using the used range of
// the sheet as the explicit row and column count.
func (w *ExcelWorkbook) readBlock(a anchor) ([][]models.Cell, error) {
	rows, err := w.file.GetRows(a.sheet)
	if err != nil {
		return nil, err
	}
	var block [][]models.Cell
	for row := a.row + 1; row <= len(rows); row++ {
		width := len(rows[row-1]) - (a.column - 1)
		if width < 0 {
			width = 0
		}
		cells := make([]models.Cell, width)
		for i := 0; i < width; i++ {
			col := a.column + i
			value, err := w.cellValue(a.sheet, col, row, false)
			if err != nil {
				return nil, err
			}
			cells[i] = models.Cell{
				Value: value,
				Color: w.cellColor(a.sheet, col, row),
			}
		}
		block = append(block, cells)
	}
	return block, nil
}

func (w *ExcelWorkbook) ensureLogSheet(sheet string) error {
	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx >= 0 {
		return nil
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return err
	}
	header := make([]interface{}, len(models.LogHeader))
	for i, h := range models.LogHeader {
		header[i] = h
	}
	w.logger.Infof(providers.TypeIngest, "Created log sheet %q", sheet)
	return w.file.SetSheetRow(sheet, "A1", &header)
}

func (w *ExcelWorkbook) dataRows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// cellNumber stores numeric readings as numbers so sheet formulas can compare them.
func cellNumber(raw string) interface{} {
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return v
	}
	return raw
}

// AppendRecord inserts the record as row 2 of the sensor log (newest first).
// The id is the number of data rows already present plus one.
func (w *ExcelWorkbook) AppendRecord(rec *models.SensorRecord) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sheet := models.LogSheetName(rec.SensorName)
	if err := w.ensureLogSheet(sheet); err != nil {
		return 0, apperrors.NewStorageError("prepare "+sheet, err)
	}
	existing, err := w.dataRows(sheet)
	if err != nil {
		return 0, apperrors.NewStorageError("count "+sheet, err)
	}
	id := len(existing) + 1

	if err := w.file.InsertRows(sheet, 2, 1); err != nil {
		return 0, apperrors.NewStorageError("insert row into "+sheet, err)
	}
	row := []interface{}{
		id,
		rec.Timestamp.In(time.Local),
		rec.Tag,
		cellNumber(rec.Temps[0]), cellNumber(rec.Temps[1]), cellNumber(rec.Temps[2]),
		cellNumber(rec.Humids[0]), cellNumber(rec.Humids[1]), cellNumber(rec.Humids[2]),
		cellNumber(rec.BadValues),
	}
	if err := w.file.SetSheetRow(sheet, "A2", &row); err != nil {
		return 0, apperrors.NewStorageError("write row into "+sheet, err)
	}
	rec.ID = id
	return id, nil
}

func (w *ExcelWorkbook) parseRecord(sensorName string, row []string) *models.SensorRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	rec := &models.SensorRecord{
		SensorName: sensorName,
		Tag:        cell(2),
		Temps:      [3]string{cell(3), cell(4), cell(5)},
		Humids:     [3]string{cell(6), cell(7), cell(8)},
		BadValues:  cell(9),
	}
	rec.ID, _ = strconv.Atoi(cell(0))
	if ts, err := summary.ParseTime(cell(1), w.layout); err == nil {
		rec.Timestamp = ts
	}
	return rec
}

// ReadRecords returns up to limit records newest first. limit <= 0 reads all.
func (w *ExcelWorkbook) ReadRecords(sensorName string, limit int) ([]*models.SensorRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sheet := models.LogSheetName(sensorName)
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := w.dataRows(sheet)
	if err != nil {
		return nil, apperrors.NewStorageError("read "+sheet, err)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]*models.SensorRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, w.parseRecord(sensorName, row))
	}
	return out, nil
}

// TrimRecords keeps the newest keep rows and returns the removed ones, newest first.
func (w *ExcelWorkbook) TrimRecords(sensorName string, keep int) ([]*models.SensorRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sheet := models.LogSheetName(sensorName)
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := w.dataRows(sheet)
	if err != nil {
		return nil, apperrors.NewStorageError("read "+sheet, err)
	}
	if keep < 0 || len(rows) <= keep {
		return nil, nil
	}

	removed := make([]*models.SensorRecord, 0, len(rows)-keep)
	for _, row := range rows[keep:] {
		removed = append(removed, w.parseRecord(sensorName, row))
	}
	// sheet rows are 1-based and row 1 is the header
	for row := len(rows) + 1; row > keep+1; row-- {
		if err := w.file.RemoveRow(sheet, row); err != nil {
			return nil, apperrors.NewStorageError("trim "+sheet, err)
		}
	}
	return removed, nil
}

func (w *ExcelWorkbook) Sensors() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for _, sheet := range w.file.GetSheetList() {
		if name, ok := strings.CutSuffix(sheet, " Data"); ok && name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (w *ExcelWorkbook) setRowField(field string, column int, t time.Time, optional bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.anchors()[field]
	if !ok {
		if optional {
			return nil
		}
		return apperrors.NewStorageError("named range "+field+" is not defined", nil)
	}
	cell, err := excelize.CoordinatesToCellName(a.column+column-1, a.row)
	if err != nil {
		return apperrors.NewStorageError("address "+field, err)
	}
	if err := w.file.SetCellValue(a.sheet, cell, t.In(time.Local)); err != nil {
		return apperrors.NewStorageError("write "+field, err)
	}
	return nil
}

func (w *ExcelWorkbook) SetLastUpdate(column int, t time.Time) error {
	return w.setRowField(models.FieldLastUpdate, column, t, false)
}

func (w *ExcelWorkbook) SetLastAlarm(column int, t time.Time) error {
	return w.setRowField(models.FieldLastAlarm, column, t, false)
}

func (w *ExcelWorkbook) SetLastStaleAlarm(column int, t time.Time) error {
	return w.setRowField(models.FieldLastStaleAlarm, column, t, true)
}

func (w *ExcelWorkbook) SetLastSummary(t time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.anchors()[models.RegionLastSummary]
	if !ok {
		return apperrors.NewStorageError("named range "+models.RegionLastSummary+" is not defined", nil)
	}
	cell, err := excelize.CoordinatesToCellName(a.column, a.row)
	if err != nil {
		return apperrors.NewStorageError("address "+models.RegionLastSummary, err)
	}
	if err := w.file.SetCellValue(a.sheet, cell, t.In(time.Local)); err != nil {
		return apperrors.NewStorageError("write "+models.RegionLastSummary, err)
	}
	return nil
}

// Flush writes the workbook next to its path and renames it into place.
func (w *ExcelWorkbook) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tmpFile := w.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return apperrors.NewStorageError("create "+tmpFile, err)
	}

	if err = w.file.Write(file); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return apperrors.NewStorageError("write workbook", err)
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return apperrors.NewStorageError("sync workbook", err)
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return apperrors.NewStorageError("close workbook", err)
	}

	if err = os.Rename(tmpFile, w.path); err != nil {
		return apperrors.NewStorageError("rename workbook", err)
	}
	return nil
}

func (w *ExcelWorkbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
