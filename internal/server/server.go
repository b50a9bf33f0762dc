// Package server implements the gRPC DocumentDiffService
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nainya/docdiff/internal/logger"
	"github.com/nainya/docdiff/internal/metrics"
	"github.com/nainya/docdiff/pkg/docdiff"
	"github.com/nainya/docdiff/pkg/fielddiff"
	"github.com/nainya/docdiff/pkg/model"
	"github.com/nainya/docdiff/pkg/snapshot"
)

// Request and response field names
const (
	fieldLeft         = "left"
	fieldRight        = "right"
	fieldDocumentID   = "documentId"
	fieldVersionID    = "versionId"
	fieldLeftVersion  = "leftVersion"
	fieldRightVersion = "rightVersion"
	fieldContent      = "content"
	fieldCreatedAt    = "createdAt"
	fieldCreatedBy    = "createdBy"
	fieldDescription  = "description"
	fieldTags         = "tags"
	fieldTag          = "tag"
	fieldAsOf         = "asOf"
	fieldSchemaCount  = "schemaCount"
	fieldSnapshots    = "snapshots"
	fieldSize         = "size"
)

// Server implements DocumentDiffServer
type Server struct {
	service *docdiff.Service
	store   *snapshot.Store
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewServer creates a server. store may be nil, in which case snapshot
// methods fail with FailedPrecondition.
func NewServer(service *docdiff.Service, store *snapshot.Store, log *logger.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		service: service,
		store:   store,
		log:     log,
		metrics: m,
	}
}

// Close closes the snapshot store
func (s *Server) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Ready reports the snapshot store state. A server without a store is
// ready for plain diffs; a closed store is not ready.
func (s *Server) Ready() (map[string]any, error) {
	if s.store == nil {
		return map[string]any{"store": "none"}, nil
	}
	state := map[string]any{"store": "open", "storePath": s.store.Path()}
	if err := s.store.Ping(); err != nil {
		state["store"] = "closed"
		return state, err
	}
	return state, nil
}

// ========== Diff Operations ==========

func (s *Server) Diff(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	left, err := requiredString(req, fieldLeft)
	if err != nil {
		return nil, err
	}
	right, err := requiredString(req, fieldRight)
	if err != nil {
		return nil, err
	}

	diff, err := s.service.DiffStrings(ctx, left, right)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeDiff(diff)
}

func (s *Server) DiffVersions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, toStatus(docdiff.ErrNoSnapshotSource)
	}
	documentID, err := requiredString(req, fieldDocumentID)
	if err != nil {
		return nil, err
	}
	leftVersion, err := requiredString(req, fieldLeftVersion)
	if err != nil {
		return nil, err
	}
	rightVersion, err := requiredString(req, fieldRightVersion)
	if err != nil {
		return nil, err
	}

	var diff *model.DocumentDiff
	err = s.observeStore("diff_versions", func() error {
		var err error
		diff, err = s.service.DiffVersions(ctx, s.store, documentID, leftVersion, rightVersion)
		return err
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeDiff(diff)
}

// ========== Snapshot Operations ==========

func (s *Server) PutSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, toStatus(docdiff.ErrNoSnapshotSource)
	}
	documentID, err := requiredString(req, fieldDocumentID)
	if err != nil {
		return nil, err
	}
	versionID, err := requiredString(req, fieldVersionID)
	if err != nil {
		return nil, err
	}
	content, err := requiredString(req, fieldContent)
	if err != nil {
		return nil, err
	}

	snap := &snapshot.Snapshot{
		DocumentID:  documentID,
		VersionID:   versionID,
		CreatedBy:   optionalString(req, fieldCreatedBy),
		Description: optionalString(req, fieldDescription),
		Tags:        stringList(req, fieldTags),
		Content:     []byte(content),
	}
	if raw := optionalString(req, fieldCreatedAt); raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be RFC 3339: %v", fieldCreatedAt, err)
		}
		snap.CreatedAt = createdAt
	}

	if err := s.observeStore("put", func() error { return s.store.Put(snap) }); err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(describe(snap))
}

// GetSnapshot returns one version selected by versionId, tag or asOf, in
// that order, or the latest version when none is given.
func (s *Server) GetSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, toStatus(docdiff.ErrNoSnapshotSource)
	}
	documentID, err := requiredString(req, fieldDocumentID)
	if err != nil {
		return nil, err
	}

	var snap *snapshot.Snapshot
	var lookup func() error
	switch {
	case optionalString(req, fieldVersionID) != "":
		lookup = func() (err error) {
			snap, err = s.store.Get(documentID, optionalString(req, fieldVersionID))
			return err
		}
	case optionalString(req, fieldTag) != "":
		lookup = func() (err error) {
			snap, err = s.store.ByTag(documentID, optionalString(req, fieldTag))
			return err
		}
	case optionalString(req, fieldAsOf) != "":
		asOf, err := time.Parse(time.RFC3339Nano, optionalString(req, fieldAsOf))
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be RFC 3339: %v", fieldAsOf, err)
		}
		lookup = func() (err error) {
			snap, err = s.store.AsOf(documentID, asOf)
			return err
		}
	default:
		lookup = func() (err error) {
			snap, err = s.store.Latest(documentID)
			return err
		}
	}

	if err := s.observeStore("get", lookup); err != nil {
		return nil, toStatus(err)
	}

	resp := describe(snap)
	resp[fieldContent] = string(snap.Content)
	return structpb.NewStruct(resp)
}

func (s *Server) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.store == nil {
		return nil, toStatus(docdiff.ErrNoSnapshotSource)
	}
	documentID, err := requiredString(req, fieldDocumentID)
	if err != nil {
		return nil, err
	}

	var history *snapshot.History
	err = s.observeStore("history", func() error {
		var err error
		history, err = s.store.History(documentID)
		return err
	})
	if err != nil {
		return nil, toStatus(err)
	}

	snaps := make([]any, len(history.Snapshots))
	for i, snap := range history.Snapshots {
		snaps[i] = describe(snap)
	}
	return structpb.NewStruct(map[string]any{
		fieldDocumentID: documentID,
		fieldSnapshots:  snaps,
	})
}

// observeStore times a store call for metrics and logs
func (s *Server) observeStore(operation string, call func() error) error {
	start := time.Now()
	err := call()
	duration := time.Since(start)

	s.log.StoreLogger(operation).LogStoreOperation(operation, duration, err)
	if s.metrics != nil {
		result := "success"
		if err != nil {
			result = "error"
		}
		s.metrics.RecordStoreOperation(operation, result, duration)
	}
	return err
}

// Helper functions

func encodeDiff(diff *model.DocumentDiff) (*structpb.Struct, error) {
	m := diff.Map()
	m[fieldSchemaCount] = diff.SchemaCount()
	resp, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode diff: %v", err)
	}
	return resp, nil
}

func describe(snap *snapshot.Snapshot) map[string]any {
	tags := make([]any, len(snap.Tags))
	for i, tag := range snap.Tags {
		tags[i] = tag
	}
	return map[string]any{
		fieldDocumentID:  snap.DocumentID,
		fieldVersionID:   snap.VersionID,
		fieldCreatedAt:   snap.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldCreatedBy:   snap.CreatedBy,
		fieldDescription: snap.Description,
		fieldTags:        tags,
		fieldSize:        len(snap.Content),
	}
}

func requiredString(req *structpb.Struct, name string) (string, error) {
	v := optionalString(req, name)
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return v, nil
}

func optionalString(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func stringList(req *structpb.Struct, name string) []string {
	values := req.GetFields()[name].GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := v.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// toStatus maps service and store errors to gRPC status codes
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, docdiff.ErrInvalidInput), errors.Is(err, snapshot.ErrInvalidSnapshot):
		code = codes.InvalidArgument
	case errors.Is(err, snapshot.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, docdiff.ErrNoSnapshotSource), errors.Is(err, snapshot.ErrClosed):
		code = codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, fielddiff.ErrEmptyHierarchy),
		errors.Is(err, fielddiff.ErrInconsistentHierarchy),
		errors.Is(err, fielddiff.ErrInvalidDifference):
		code = codes.Internal
	}
	return status.Error(code, fmt.Sprint(err))
}
