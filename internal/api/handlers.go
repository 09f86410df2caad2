package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/spangrid/pkg/errors"
	"github.com/matzehuels/spangrid/pkg/layout"
	"github.com/matzehuels/spangrid/pkg/manifest"
	"github.com/matzehuels/spangrid/pkg/state"
)

// LayoutRequest is the body of /v1/layout, /v1/jump and POST /v1/states.
type LayoutRequest struct {
	Manifest json.RawMessage `json:"manifest"`
	Options  layout.Options  `json:"options"`

	// StateID seeds a jump with a saved state's entries. When set and
	// Options.Target is zero, the jump goes to the state's anchor.
	StateID string `json:"state_id,omitempty"`

	// TTL is the lifetime of a saved state, such as "24h".
	TTL string `json:"ttl,omitempty"`
}

// LayoutResponse wraps a result with whether it was served from the cache.
type LayoutResponse struct {
	*layout.Result
	CacheHit bool `json:"cache_hit"`
}

// SaveStateResponse is the body answering POST /v1/states.
type SaveStateResponse struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	Entries   int       `json:"entries"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, m, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, hit, err := s.runner.Layout(r.Context(), m, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{Result: res, CacheHit: hit})
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	req, m, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := req.Options
	if req.StateID != "" {
		if s.store == nil {
			writeJSONError(w, http.StatusNotImplemented, "state store not configured")
			return
		}
		snap, err := s.store.Get(r.Context(), req.StateID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if snap.ManifestHash != m.Hash() {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidState, "state %s was saved for a different manifest", snap.ID))
			return
		}
		opts.State = &snap.State
		if opts.Target == 0 && opts.Offset == 0 {
			opts.Target, opts.Offset = snap.State.AnchorPosition, snap.State.AnchorOffset
		}
	}
	res, hit, err := s.runner.Jump(r.Context(), m, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{Result: res, CacheHit: hit})
}

func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	req, m, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var ttl time.Duration
	if req.TTL != "" {
		if ttl, err = time.ParseDuration(req.TTL); err != nil {
			s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "ttl"))
			return
		}
	}

	var res *layout.Result
	if req.Options.Target > 0 || req.Options.Offset != 0 {
		res, _, err = s.runner.Jump(r.Context(), m, req.Options)
	} else {
		res, _, err = s.runner.Layout(r.Context(), m, req.Options)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap := state.New(m.Name, m.Hash(), res.State, ttl)
	if err := s.store.Set(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SaveStateResponse{ID: snap.ID, ExpiresAt: snap.ExpiresAt, Entries: len(snap.State.Entries)})
}

func (s *Server) handleListStates(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []*state.Snapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"states": snaps, "count": len(snaps)})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := state.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a LayoutRequest and parses its manifest.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*LayoutRequest, *manifest.Manifest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	var req LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request")
	}
	if len(req.Manifest) == 0 {
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "manifest is required")
	}
	m, err := manifest.Parse(req.Manifest, manifest.FormatJSON)
	if err != nil {
		return nil, nil, err
	}
	return &req, m, nil
}
