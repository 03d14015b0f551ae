package http

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/dto"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
	pkgerrors "github.com/Conte777/NewsFlow/services/account-checker/pkg/errors"
	"github.com/Conte777/NewsFlow/services/account-checker/pkg/httputil"
)

// BatchHandler handles batch HTTP requests.
// Record paths and directories are resolved against recordsDir and must stay inside it;
// realRoot is recordsDir with symlinks resolved.
type BatchHandler struct {
	service    deps.CheckService
	mapper     httputil.StatusMapper
	recordsDir string
	realRoot   string
	logger     zerolog.Logger
}

// NewBatchHandler creates a new batch handler serving records under recordsDir
func NewBatchHandler(service deps.CheckService, mapper httputil.StatusMapper, recordsDir string, logger zerolog.Logger) *BatchHandler {
	root, err := filepath.Abs(recordsDir)
	if err != nil {
		root = filepath.Clean(recordsDir)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = root
	}

	return &BatchHandler{
		service:    service,
		mapper:     mapper,
		recordsDir: root,
		realRoot:   realRoot,
		logger:     logger.With().Str("handler", "batch").Logger(),
	}
}

// CreateBatch handles POST /api/v1/batches
func (h *BatchHandler) CreateBatch(ctx *fasthttp.RequestCtx) {
	var req dto.CreateBatchRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			httputil.WriteErrorResponse(ctx, "invalid request body", fasthttp.StatusBadRequest)
			return
		}
	}

	var paths []string
	if len(req.Paths) > 0 {
		paths = make([]string, 0, len(req.Paths))
		for _, p := range req.Paths {
			resolved, err := h.confine(p)
			if err != nil {
				h.logger.Warn().Str("path", p).Msg("rejected record path")
				httputil.WriteMappedError(ctx, h.mapper, err)
				return
			}
			paths = append(paths, resolved)
		}
	} else {
		if req.Dir == "" {
			httputil.WriteMappedError(ctx, h.mapper, checkererrors.ErrInvalidRequest)
			return
		}

		dir, err := h.confine(req.Dir)
		if err != nil {
			h.logger.Warn().Str("dir", req.Dir).Msg("rejected record directory")
			httputil.WriteMappedError(ctx, h.mapper, err)
			return
		}

		resolved, err := h.service.ResolvePaths(dir)
		if err != nil {
			h.logger.Warn().Err(err).Str("dir", dir).Msg("failed to resolve record directory")
			httputil.WriteMappedError(ctx, h.mapper, pkgerrors.NewValidationErrorf("cannot read dir %s", req.Dir))
			return
		}
		paths = resolved
	}

	batchID, err := h.service.StartBatch(ctx, paths)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponseWithStatus(ctx, dto.CreateBatchResponse{
		BatchID: batchID,
		Total:   len(paths),
	}, fasthttp.StatusAccepted)
}

// confine resolves p against the records directory. Relative paths are joined to it;
// absolute paths are accepted only when they already point inside it.
func (h *BatchHandler) confine(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", pkgerrors.NewValidationError("record path must not be empty")
	}

	resolved := p
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(h.recordsDir, resolved)
	}
	resolved = filepath.Clean(resolved)

	if !within(h.recordsDir, resolved) {
		return "", pkgerrors.NewValidationErrorf("path %s is outside the records directory", p)
	}
	if target, err := filepath.EvalSymlinks(resolved); err == nil && !within(h.realRoot, target) {
		return "", pkgerrors.NewValidationErrorf("path %s is outside the records directory", p)
	}

	return resolved, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// GetBatch handles GET /api/v1/batches/{batch_id}
func (h *BatchHandler) GetBatch(ctx *fasthttp.RequestCtx) {
	batchID, ok := ctx.UserValue("batch_id").(string)
	if !ok || batchID == "" {
		httputil.WriteErrorResponse(ctx, "batch_id is required", fasthttp.StatusBadRequest)
		return
	}

	report, err := h.service.GetBatch(ctx, batchID)
	if err != nil {
		httputil.WriteMappedError(ctx, h.mapper, err)
		return
	}

	httputil.WriteResponse(ctx, dto.NewBatchResponse(report))
}
