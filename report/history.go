package report

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/tuning"
	"github.com/xuri/excelize/v2"
)

const (
	historySheet = "History"
	designSheet  = "Design"
)

var historyHeader = []interface{}{
	"Iteration", "f_res (GHz)", "f_target (GHz)", "Error (%)", "S11 min (dB)",
	"Proposed scaling", "Applied scaling", "Clamped", "Patch L (mm)",
}

// HistoryWorkbook builds a workbook with the tuning history on one sheet
// and the model-builder variables of s on another. s may be nil.
func HistoryWorkbook(records []tuning.Record, s *design.State) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{r.Iteration, r.FresGHz, r.TargetGHz, r.ErrorPercent, r.S11MinDb, r.Proposed, r.Scaling, r.Clamped, r.PatchLMM}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if s == nil {
		return f, nil
	}

	if _, err := f.NewSheet(designSheet); err != nil {
		f.Close()
		return nil, err
	}
	f.SetCellValue(designSheet, "A1", "Variable")
	f.SetCellValue(designSheet, "B1", "Value")
	for i, v := range s.Variables() {
		f.SetCellValue(designSheet, fmt.Sprintf("A%d", i+2), v.Name)
		f.SetCellValue(designSheet, fmt.Sprintf("B%d", i+2), v.Value)
	}
	return f, nil
}

// WriteHistory saves the tuning history workbook to fname (.xlsx)
func WriteHistory(fname string, records []tuning.Record, s *design.State) error {
	f, err := HistoryWorkbook(records, s)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(fname); err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": fname, "records": len(records)}).Info("tuning history saved")
	return nil
}
