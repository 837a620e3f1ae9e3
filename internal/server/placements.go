package server

import (
	"net/http"

	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/geom"
	"github.com/matzehuels/spotfinder/pkg/observability"
	"github.com/matzehuels/spotfinder/pkg/pipeline"
	"github.com/matzehuels/spotfinder/pkg/placement"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// placementRequest is the body of POST /v1/placements. Config and
// thresholds are decoded on top of the server defaults, so a request only
// names the options it changes. The scene is either inline or the hash
// returned by POST /v1/scenes.
type placementRequest struct {
	Name       string           `json:"name,omitempty"`
	Scene      *scene.Document  `json:"scene"`
	SceneHash  string           `json:"scene_hash"`
	Footprint  *[3]float64      `json:"footprint"`
	Config     placement.Config `json:"config"`
	Thresholds scene.Thresholds `json:"thresholds"`
	Refresh    bool             `json:"refresh,omitempty"`
}

type bounds struct {
	Min geom.Vec3 `json:"min"`
	Max geom.Vec3 `json:"max"`
}

type placementResponse struct {
	RequestID string             `json:"request_id"`
	Name      string             `json:"name,omitempty"`
	SceneHash string             `json:"scene_hash"`
	Bounds    bounds             `json:"bounds"`
	FloorZ    float64            `json:"floor_z"`
	Result    placement.Result   `json:"result"`
	Stats     pipeline.Stats     `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cache"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	RequestID string    `json:"request_id"`
	Error     errorBody `json:"error"`
}

func (s *Server) handlePlacement(w http.ResponseWriter, r *http.Request) {
	req := placementRequest{
		Config:     s.cfg.Placement(),
		Thresholds: s.cfg.Thresholds(),
	}
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}
	if req.Scene == nil && req.SceneHash == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "scene or scene_hash is required"))
		return
	}
	if req.Footprint == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFootprint, "footprint is required"))
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Scene:      req.Scene,
		SceneHash:  req.SceneHash,
		Name:       req.Name,
		Footprint:  placement.FootprintFromArray(*req.Footprint),
		Config:     req.Config,
		Thresholds: req.Thresholds,
		Refresh:    req.Refresh,
		Logger:     s.logger,

		MaxGridPoints: s.cfg.Server.MaxGridPoints,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, placementResponse{
		RequestID: requestID(r.Context()),
		Name:      req.Name,
		SceneHash: res.SceneHash,
		Bounds:    bounds{Min: res.Scene.Min, Max: res.Scene.Max},
		FloorZ:    res.Scene.FloorZ,
		Result:    res.Placement,
		Stats:     res.Stats,
		CacheInfo: res.CacheInfo,
	})
}

type sceneResponse struct {
	RequestID string  `json:"request_id"`
	SceneHash string  `json:"scene_hash"`
	Objects   int     `json:"objects"`
	Bounds    bounds  `json:"bounds"`
	FloorZ    float64 `json:"floor_z"`
}

// handleStoreScene keeps a scene document so later placement requests can
// reference it by hash instead of resending it.
func (s *Server) handleStoreScene(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	doc, err := scene.ReadDocument(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	loaded, err := s.runner.StoreScene(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sc := loaded.Scene
	s.writeJSON(w, http.StatusCreated, sceneResponse{
		RequestID: requestID(r.Context()),
		SceneHash: loaded.Hash,
		Objects:   len(sc.Objects),
		Bounds:    bounds{Min: sc.Min, Max: sc.Max},
		FloorZ:    sc.FloorZ,
	})
}

// statusFor maps error codes to HTTP status: caller mistakes are 400,
// unknown scene hashes 404, everything else 500.
func statusFor(err error) int {
	switch {
	case errors.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", requestID(r.Context()), "err", err)
		msg = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	s.writeJSON(w, status, errorResponse{
		RequestID: requestID(r.Context()),
		Error:     errorBody{Code: code, Message: msg},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
