package rankinghttp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	rankingservice "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/application"
	rankingdomain "github.com/CSA-DanielVillamizar/lama-mototurismo/app/modules/ranking/domain"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Ranking"

// maxExportRows bounds a single export.
const maxExportRows = 50000

var exportHeader = []any{"Position", "Rank", "Member ID", "Total Points", "Total Miles", "Events", "Visitor Class", "Last Calculated (UTC)"}

// HandleExport streams the whole leaderboard as an XLSX workbook.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "rankinghttp.Export")
	defer span.End()

	p, err := parsePartition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, partition, err := h.collect(ctx, p)
	if err != nil {
		h.writeServiceError(w, r, "export ranking", err)
		return
	}

	data, err := buildWorkbook(entries)
	if err != nil {
		h.writeServiceError(w, r, "export ranking", err)
		return
	}

	filename := fmt.Sprintf("ranking-%d-%s-%s.xlsx", partition.Year, partition.Scope.Type, partition.Scope.ID)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// collect pages through the partition in MaxPageSize steps.
func (h *Handlers) collect(ctx context.Context, p partitionParams) ([]rankingservice.RankingEntry, rankingdomain.Partition, error) {
	var (
		entries   []rankingservice.RankingEntry
		partition rankingdomain.Partition
	)
	for skip := 0; skip < maxExportRows; skip += rankingdomain.MaxPageSize {
		page, err := h.service.GetRanking(ctx, p.tenantID, p.year, p.scopeType, p.scopeID, skip, rankingdomain.MaxPageSize)
		if err != nil {
			return nil, partition, err
		}
		partition = page.Partition
		entries = append(entries, page.Entries...)
		if len(page.Entries) < rankingdomain.MaxPageSize || len(entries) >= page.Total {
			break
		}
	}
	return entries, partition, nil
}

func buildWorkbook(entries []rankingservice.RankingEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			e.Position,
			e.Rank,
			e.MemberID.String(),
			e.TotalPoints,
			e.TotalMiles,
			e.EventsCount,
			string(e.VisitorClass),
			e.LastCalculatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "C", "C", 38); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
