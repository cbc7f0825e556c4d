package imports

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/freitasmatheusrn/fleamarket-inventory/internal/database"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/inventory"
	"github.com/freitasmatheusrn/fleamarket-inventory/pkg/rest"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultUploadConcurrency = 8
	DefaultBatchSize         = 20
	DefaultMaxErrors         = 100
)

const (
	msgLoginRequired    = "ログインが必要です"
	msgFileRequired     = "Excelファイルが必要です"
	msgInvalidPath      = "不正なパスです"
	msgInvalidZipPath   = "不正なZIPパスです"
	msgExcelFetchFailed = "Excelの取得に失敗しました: "
	msgZipFetchFailed   = "ZIPの取得に失敗しました: "
	msgExcelReadFailed  = "Excelの読み込みに失敗しました: "
	msgZipReadFailed    = "ZIPの読み込みに失敗しました: "
	msgLookupFailed     = "既存商品の取得に失敗しました"
	msgInsertFailed     = "一括登録エラー（%d件目〜%d件目）: %s"
	msgUpdateFailed     = "行%d: 更新エラー（SKU %s）: %s"
	msgStockOverflow    = "行%d: 在庫数または原価が上限を超えています（SKU %s）"
	msgMoreErrors       = "…他%d件のエラー"
)

type InventoryStore interface {
	FindBySKUs(ctx context.Context, userID string, skus []string) ([]inventory.StockEntry, error)
	InsertProducts(ctx context.Context, products []inventory.NewProduct) error
	UpdateProduct(ctx context.Context, update inventory.ProductUpdate) error
}

// BlobStore holds uploaded images and the staged spreadsheets and archives.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, keys ...string) error
}

type ResultStore interface {
	Save(ctx context.Context, userID string, result *ImportResult) error
	Latest(ctx context.Context, userID string) (*ImportResult, error)
}

type Service interface {
	Import(ctx context.Context, input ImportInput) (*ImportResult, *rest.ApiErr)
	ImportWithProgress(ctx context.Context, input ImportInput, onProgress ImportProgressCallback) (*ImportResult, *rest.ApiErr)
	Latest(ctx context.Context, userID string) (*ImportResult, *rest.ApiErr)
}

type Options struct {
	UploadConcurrency int
	BatchSize         int
	MaxErrors         int
}

type svc struct {
	inventory  InventoryStore
	blobs      BlobStore
	results    ResultStore
	normalizer *Normalizer
	opts       Options
	logger     *zap.Logger
}

// NewService wires the pipeline. results may be nil, in which case runs are
// not remembered.
func NewService(inv InventoryStore, blobs BlobStore, results ResultStore, opts Options, logger *zap.Logger) *svc {
	if opts.UploadConcurrency <= 0 {
		opts.UploadConcurrency = DefaultUploadConcurrency
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	return &svc{
		inventory:  inv,
		blobs:      blobs,
		results:    results,
		normalizer: NewNormalizer(DefaultColumnResolver()),
		opts:       opts,
		logger:     logger,
	}
}

func (s *svc) Import(ctx context.Context, input ImportInput) (*ImportResult, *rest.ApiErr) {
	return s.ImportWithProgress(ctx, input, nil)
}

func (s *svc) ImportWithProgress(ctx context.Context, input ImportInput, onProgress ImportProgressCallback) (*ImportResult, *rest.ApiErr) {
	emit := func(e ImportProgressEvent) {
		if onProgress != nil {
			onProgress(e)
		}
	}

	result, apiErr := s.run(ctx, input, emit)
	if apiErr != nil {
		emit(ImportProgressEvent{Type: ImportEventFailed, Message: apiErr.Message})
		return nil, apiErr
	}
	emit(ImportProgressEvent{Type: ImportEventComplete, ImportResult: result})
	return result, nil
}

func (s *svc) run(ctx context.Context, in ImportInput, emit ImportProgressCallback) (*ImportResult, *rest.ApiErr) {
	if in.UserID == "" {
		return nil, rest.NewUnauthorizedRequestError(msgLoginRequired)
	}
	userID := in.UserID

	// Everything that can abort the run is read before anything is written.
	wb, apiErr := s.loadWorkbook(ctx, in)
	if apiErr != nil {
		return nil, apiErr
	}
	pool, apiErr := s.loadArchive(ctx, in)
	if apiErr != nil {
		return nil, apiErr
	}

	emit(ImportProgressEvent{Type: ImportEventStart, Total: len(wb.Rows)})
	s.logger.Info("import started",
		zap.String("user_id", userID),
		zap.String("format", string(wb.Format)),
		zap.Int("rows", len(wb.Rows)),
		zap.Int("embedded_images", len(wb.Images)),
		zap.Int("archive_keys", pool.Len()),
	)

	valid, errs := s.normalizer.NormalizeRows(wb.Rows)
	for _, msg := range errs {
		s.logger.Warn("row rejected", zap.String("reason", msg))
		emit(ImportProgressEvent{Type: ImportEventRowError, Message: msg})
	}

	candidates := Aggregate(valid)

	// Last step that can abort: nothing has been uploaded yet.
	existing, err := s.lookupExisting(ctx, userID, candidates)
	if err != nil {
		s.logger.Error("failed to load existing products", zap.String("user_id", userID), zap.Error(err))
		return nil, rest.NewInternalServerError(msgLookupFailed)
	}

	embedded := s.uploadEmbedded(ctx, userID, wb.Images)
	emit(ImportProgressEvent{Type: ImportEventImages, Index: len(embedded), Total: len(wb.Images)})
	for i := range candidates {
		candidates[i].ImageURL = embedded[candidates[i].OriginRowIndex]
	}

	s.attachArchiveImages(ctx, userID, pool, candidates)

	result := &ImportResult{Errors: make([]string, 0)}
	for _, c := range candidates {
		if c.ImageURL != "" {
			result.ImagesAssociated++
		}
	}

	plan := Reconcile(candidates, existing)
	var overflowErrs []string
	plan.ToInsert, overflowErrs = s.dropOversized(plan.ToInsert, overflowErrs)
	plan.ToUpdate, overflowErrs = s.dropOversized(plan.ToUpdate, overflowErrs)
	total := len(plan.ToInsert) + len(plan.ToUpdate)

	created, insertErrs := s.persistInserts(ctx, userID, plan.ToInsert, func(done int) {
		emit(ImportProgressEvent{Type: ImportEventPersist, Index: done, Total: total})
	})
	updated, updateErrs := s.persistUpdates(ctx, plan.ToUpdate, func(done int) {
		emit(ImportProgressEvent{Type: ImportEventPersist, Index: len(plan.ToInsert) + done, Total: total})
	})

	errs = append(errs, overflowErrs...)
	errs = append(errs, insertErrs...)
	errs = append(errs, updateErrs...)

	result.Created = created
	result.Updated = updated
	result.Errors = capErrors(errs, s.opts.MaxErrors)
	if wb.Format == FormatXLSX {
		n := len(embedded)
		result.ImageCount = &n
	}

	// Housekeeping must not be cut short by the caller's deadline.
	after := context.WithoutCancel(ctx)
	s.removeStaged(after, in)
	s.saveResult(after, userID, result)

	s.logger.Info("import finished",
		zap.String("user_id", userID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(errs)),
		zap.Int("images", result.ImagesAssociated),
	)
	return result, nil
}

func (s *svc) Latest(ctx context.Context, userID string) (*ImportResult, *rest.ApiErr) {
	if userID == "" {
		return nil, rest.NewUnauthorizedRequestError(msgLoginRequired)
	}
	if s.results == nil {
		return nil, rest.NewNotFoundError("取り込み結果がありません")
	}
	res, err := s.results.Latest(ctx, userID)
	if err != nil {
		s.logger.Error("failed to read latest import", zap.String("user_id", userID), zap.Error(err))
		return nil, rest.NewInternalServerError("取り込み結果の取得に失敗しました")
	}
	if res == nil {
		return nil, rest.NewNotFoundError("取り込み結果がありません")
	}
	return res, nil
}

func (s *svc) loadWorkbook(ctx context.Context, in ImportInput) (*Workbook, *rest.ApiErr) {
	var data []byte
	fileName := in.FileName

	switch {
	case in.ExcelPath != "":
		if !ownsPath(in.UserID, in.ExcelPath) {
			return nil, rest.NewBadRequestError(msgInvalidPath)
		}
		b, err := s.blobs.Download(ctx, in.ExcelPath)
		if err != nil {
			s.logger.Warn("staged spreadsheet download failed", zap.String("path", in.ExcelPath), zap.Error(err))
			return nil, rest.NewBadRequestError(msgExcelFetchFailed + err.Error())
		}
		data = b
		fileName = path.Base(in.ExcelPath)
	case len(in.Spreadsheet) > 0:
		data = in.Spreadsheet
	default:
		return nil, rest.NewBadRequestError(msgFileRequired)
	}
	if fileName == "" {
		fileName = "import.xlsx"
	}

	wb, err := ParseWorkbook(data, fileName, in.SkipFirstRow)
	if err != nil {
		s.logger.Warn("spreadsheet unreadable", zap.String("file", fileName), zap.Error(err))
		return nil, rest.NewBadRequestError(msgExcelReadFailed + err.Error())
	}
	return wb, nil
}

func (s *svc) loadArchive(ctx context.Context, in ImportInput) (*ImagePool, *rest.ApiErr) {
	var data []byte
	switch {
	case in.ZipPath != "":
		if !ownsPath(in.UserID, in.ZipPath) {
			return nil, rest.NewBadRequestError(msgInvalidZipPath)
		}
		b, err := s.blobs.Download(ctx, in.ZipPath)
		if err != nil {
			s.logger.Warn("staged archive download failed", zap.String("path", in.ZipPath), zap.Error(err))
			return nil, rest.NewBadRequestError(msgZipFetchFailed + err.Error())
		}
		data = b
	case len(in.Archive) > 0:
		data = in.Archive
	default:
		return NewImagePool(), nil
	}

	pool, err := BuildArchivePool(data)
	if err != nil {
		return nil, rest.NewBadRequestError(msgZipReadFailed + err.Error())
	}
	return pool, nil
}

func ownsPath(userID, p string) bool {
	return strings.HasPrefix(p, userID+"/") && !strings.Contains(p, "..")
}

// inWindows runs fn over [0, n) with at most width calls in flight. Each
// window is fully settled before the next one starts.
func inWindows(n, width int, fn func(i int)) {
	for start := 0; start < n; start += width {
		end := min(start+width, n)
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				fn(i)
				return nil
			})
		}
		_ = g.Wait()
	}
}

func (s *svc) uploadImage(ctx context.Context, userID string, data []byte) (string, error) {
	ext, contentType := SniffImage(data)
	key := fmt.Sprintf("%s/%s.%s", userID, uuid.NewString(), ext)
	return s.blobs.Upload(ctx, key, data, contentType)
}

// uploadEmbedded returns the public URL per data row for every picture that
// made it to storage.
func (s *svc) uploadEmbedded(ctx context.Context, userID string, images []EmbeddedImage) map[int]string {
	urls := make([]string, len(images))
	inWindows(len(images), s.opts.UploadConcurrency, func(i int) {
		url, err := s.uploadImage(ctx, userID, images[i].Data)
		if err != nil {
			s.logger.Warn("embedded image upload failed", zap.Int("row", images[i].RowIndex+2), zap.Error(err))
			return
		}
		urls[i] = url
	})

	out := make(map[int]string, len(images))
	for i, url := range urls {
		if url != "" {
			out[images[i].RowIndex] = url
		}
	}
	return out
}

func (s *svc) attachArchiveImages(ctx context.Context, userID string, pool *ImagePool, candidates []MergeCandidate) {
	if pool.Len() == 0 {
		return
	}
	type task struct {
		candidate int
		data      []byte
	}
	var tasks []task
	for i, c := range candidates {
		if c.ImageURL != "" {
			continue
		}
		data, ok := pool.Find(ImageQuery{
			ImageRef: c.ImageRef,
			SKU:      c.SKU,
			Name:     c.Name,
			RowIndex: c.OriginRowIndex,
		})
		if ok {
			tasks = append(tasks, task{candidate: i, data: data})
		}
	}

	inWindows(len(tasks), s.opts.UploadConcurrency, func(i int) {
		t := tasks[i]
		url, err := s.uploadImage(ctx, userID, t.data)
		if err != nil {
			s.logger.Warn("archive image upload failed",
				zap.Int("row", candidates[t.candidate].OriginRowIndex+2),
				zap.String("sku", candidates[t.candidate].SKU),
				zap.Error(err),
			)
			return
		}
		// each task owns a distinct candidate
		candidates[t.candidate].ImageURL = url
	})
}

func (s *svc) lookupExisting(ctx context.Context, userID string, candidates []MergeCandidate) (map[string]ExistingEntry, error) {
	skus := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.SKU != "" {
			skus = append(skus, c.SKU)
		}
	}
	existing := make(map[string]ExistingEntry, len(skus))
	if len(skus) == 0 {
		return existing, nil
	}

	entries, err := s.inventory.FindBySKUs(ctx, userID, skus)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.SKU == "" {
			continue
		}
		existing[e.SKU] = ExistingEntry{ID: e.ID, SKU: e.SKU, Stock: e.Stock, CostYen: e.CostYen}
	}
	return existing, nil
}

// dropOversized removes decisions whose merged stock or cost no longer fits
// the stored column, so one oversized SKU cannot fail a whole batch.
func (s *svc) dropOversized(decisions []Decision, errs []string) ([]Decision, []string) {
	kept := decisions[:0]
	for _, d := range decisions {
		if d.Stock > MaxQuantity || d.CostYen > MaxQuantity {
			s.logger.Warn("merged quantity out of range",
				zap.Int("row", d.OriginRowIndex+2),
				zap.String("sku", d.SKU),
				zap.Int("stock", d.Stock),
				zap.Int("cost", d.CostYen),
			)
			errs = append(errs, fmt.Sprintf(msgStockOverflow, d.OriginRowIndex+2, d.SKU))
			continue
		}
		kept = append(kept, d)
	}
	return kept, errs
}

// persistInserts writes one batch at a time. A failed batch is reported and
// skipped; batches already written stay.
func (s *svc) persistInserts(ctx context.Context, userID string, decisions []Decision, progress func(done int)) (int, []string) {
	created := 0
	var errs []string
	for start := 0; start < len(decisions); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(decisions))
		batch := make([]inventory.NewProduct, 0, end-start)
		for _, d := range decisions[start:end] {
			batch = append(batch, inventory.NewProduct{
				UserID:          userID,
				SKU:             d.SKU,
				Name:            d.Name,
				CostYen:         d.CostYen,
				Stock:           d.Stock,
				Memo:            d.Memo,
				Campaign:        d.Campaign,
				Size:            d.Size,
				Color:           d.Color,
				ImageURL:        d.ImageURL,
				StockReceivedAt: d.StockReceivedAt,
			})
		}

		if err := s.inventory.InsertProducts(ctx, batch); err != nil {
			s.logger.Error("insert batch failed",
				zap.Int("from", start+1),
				zap.Int("to", end),
				zap.Error(err),
			)
			errs = append(errs, fmt.Sprintf(msgInsertFailed, start+1, end, database.Describe(err)))
		} else {
			created += len(batch)
		}
		progress(end)
	}
	return created, errs
}

// persistUpdates runs the updates of a batch concurrently and the batches one
// after another. Errors are reported in decision order.
func (s *svc) persistUpdates(ctx context.Context, decisions []Decision, progress func(done int)) (int, []string) {
	failures := make([]error, len(decisions))
	for start := 0; start < len(decisions); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(decisions))
		inWindows(end-start, s.opts.BatchSize, func(i int) {
			d := decisions[start+i]
			failures[start+i] = s.inventory.UpdateProduct(ctx, inventory.ProductUpdate{
				ID:              d.ExistingID,
				Name:            d.Name,
				CostYen:         d.CostYen,
				Stock:           d.Stock,
				Memo:            d.Memo,
				Campaign:        d.Campaign,
				Size:            d.Size,
				Color:           d.Color,
				ImageURL:        d.ImageURL,
				StockReceivedAt: d.StockReceivedAt,
			})
		})
		progress(end)
	}

	updated := 0
	var errs []string
	for i, err := range failures {
		if err == nil {
			updated++
			continue
		}
		d := decisions[i]
		s.logger.Warn("product update failed",
			zap.Int("row", d.OriginRowIndex+2),
			zap.String("sku", d.SKU),
			zap.Error(err),
		)
		errs = append(errs, fmt.Sprintf(msgUpdateFailed, d.OriginRowIndex+2, d.SKU, database.Describe(err)))
	}
	return updated, errs
}

func capErrors(errs []string, limit int) []string {
	if errs == nil {
		return make([]string, 0)
	}
	if limit <= 0 || len(errs) <= limit {
		return errs
	}
	out := append([]string(nil), errs[:limit]...)
	return append(out, fmt.Sprintf(msgMoreErrors, len(errs)-limit))
}

func (s *svc) removeStaged(ctx context.Context, in ImportInput) {
	var keys []string
	if in.ExcelPath != "" {
		keys = append(keys, in.ExcelPath)
	}
	if in.ZipPath != "" {
		keys = append(keys, in.ZipPath)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.blobs.Remove(ctx, keys...); err != nil {
		s.logger.Warn("failed to remove staged files", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *svc) saveResult(ctx context.Context, userID string, result *ImportResult) {
	if s.results == nil {
		return
	}
	if err := s.results.Save(ctx, userID, result); err != nil {
		s.logger.Warn("failed to store import result", zap.String("user_id", userID), zap.Error(err))
	}
}
