package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dga_gateway/internal/models"
	"dga_gateway/internal/ports"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName       = "citizens"
	DefaultLimit    = 1000
	MaxLimit        = 50000
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	keyPrefix       = "exports/citizens-"
	timestampLayout = time.RFC3339
)

var Header = []string{"userId", "citizenId", "firstname", "lastname", "mobile", "email", "createdAt", "updatedAt"}

type Request struct {
	Limit int64
}

type Result struct {
	Path      string
	Rows      int
	Bucket    string
	Key       string
	SizeBytes int64
}

type Service struct {
	Store    ports.RecordStore
	Uploader ports.ObjectUploader
	now      func() time.Time
}

func NewService(store ports.RecordStore, uploader ports.ObjectUploader) *Service {
	return &Service{Store: store, Uploader: uploader, now: time.Now}
}

func (s *Service) Export(ctx context.Context, req Request) (Result, error) {
	if s.Store == nil || s.Uploader == nil {
		return Result{}, errors.New("export not configured")
	}
	t0 := time.Now()
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	log.Printf("[EXPORT][START] limit=%d", limit)

	recs, err := s.Store.List(ctx, limit)
	if err != nil {
		log.Printf("[EXPORT][LIST][ERR] %v", err)
		return Result{}, fmt.Errorf("list citizens: %w", err)
	}

	buf, err := Render(recs)
	if err != nil {
		log.Printf("[EXPORT][XLSX][ERR] %v", err)
		return Result{}, err
	}

	key := fmt.Sprintf("%s%d-%s.xlsx", keyPrefix, s.now().Unix(), uuid.NewString())
	meta, err := s.Uploader.Upload(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), XLSXContentType)
	if err != nil {
		log.Printf("[EXPORT][UPLOAD][ERR] %v", err)
		return Result{}, err
	}

	log.Printf("[EXPORT][DONE] rows=%d key=%q size=%d duration=%s", len(recs), meta.Key, meta.Size, time.Since(t0))
	return Result{
		Path:      meta.Path(),
		Rows:      len(recs),
		Bucket:    meta.Bucket,
		Key:       meta.Key,
		SizeBytes: meta.Size,
	}, nil
}

// Render writes recs into a single-sheet workbook with Header as row 1.
func Render(recs []models.CitizenRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("xlsx stream: %w", err)
	}

	if err := sw.SetRow("A1", toRow(Header)); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}
	for i, r := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []string{r.UserID, r.CitizenID, r.Firstname, r.Lastname, r.Mobile, r.Email, stamp(r.CreatedAt), stamp(r.UpdatedAt)}
		if err := sw.SetRow(cell, toRow(row)); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("xlsx flush: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf, nil
}

func toRow(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
