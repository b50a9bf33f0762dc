// Typed client for DocumentDiffService
package server

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nainya/docdiff/pkg/model"
	"github.com/nainya/docdiff/pkg/snapshot"
)

// Client calls a remote DocumentDiffService
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Diff compares two document exports remotely
func (c *Client) Diff(ctx context.Context, left, right string, opts ...grpc.CallOption) (*model.DocumentDiff, error) {
	out, err := c.invoke(ctx, MethodDiff, map[string]any{
		fieldLeft:  left,
		fieldRight: right,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return model.DecodeDocumentDiff(out.AsMap())
}

// DiffVersions compares two stored versions remotely
func (c *Client) DiffVersions(ctx context.Context, documentID, leftVersion, rightVersion string, opts ...grpc.CallOption) (*model.DocumentDiff, error) {
	out, err := c.invoke(ctx, MethodDiffVersions, map[string]any{
		fieldDocumentID:   documentID,
		fieldLeftVersion:  leftVersion,
		fieldRightVersion: rightVersion,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return model.DecodeDocumentDiff(out.AsMap())
}

// PutSnapshot stores a document export remotely
func (c *Client) PutSnapshot(ctx context.Context, snap *snapshot.Snapshot, opts ...grpc.CallOption) (*snapshot.Snapshot, error) {
	req := map[string]any{
		fieldDocumentID:  snap.DocumentID,
		fieldVersionID:   snap.VersionID,
		fieldContent:     string(snap.Content),
		fieldCreatedBy:   snap.CreatedBy,
		fieldDescription: snap.Description,
	}
	if len(snap.Tags) > 0 {
		tags := make([]any, len(snap.Tags))
		for i, tag := range snap.Tags {
			tags[i] = tag
		}
		req[fieldTags] = tags
	}
	if !snap.CreatedAt.IsZero() {
		req[fieldCreatedAt] = snap.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	out, err := c.invoke(ctx, MethodPutSnapshot, req, opts...)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(out)
}

// SnapshotQuery selects a stored version. Empty means the latest.
type SnapshotQuery struct {
	VersionID string
	Tag       string
	AsOf      time.Time
}

// GetSnapshot fetches a stored version with its content
func (c *Client) GetSnapshot(ctx context.Context, documentID string, q SnapshotQuery, opts ...grpc.CallOption) (*snapshot.Snapshot, error) {
	req := map[string]any{fieldDocumentID: documentID}
	if q.VersionID != "" {
		req[fieldVersionID] = q.VersionID
	}
	if q.Tag != "" {
		req[fieldTag] = q.Tag
	}
	if !q.AsOf.IsZero() {
		req[fieldAsOf] = q.AsOf.UTC().Format(time.RFC3339Nano)
	}

	out, err := c.invoke(ctx, MethodGetSnapshot, req, opts...)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(out)
}

// History lists the versions of a document, oldest first, without content
func (c *Client) History(ctx context.Context, documentID string, opts ...grpc.CallOption) (*snapshot.History, error) {
	out, err := c.invoke(ctx, MethodHistory, map[string]any{fieldDocumentID: documentID}, opts...)
	if err != nil {
		return nil, err
	}

	history := &snapshot.History{DocumentID: documentID}
	for _, v := range out.GetFields()[fieldSnapshots].GetListValue().GetValues() {
		snap, err := decodeSnapshot(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		history.Snapshots = append(history.Snapshots, snap)
	}
	return history, nil
}

func decodeSnapshot(s *structpb.Struct) (*snapshot.Snapshot, error) {
	snap := &snapshot.Snapshot{
		DocumentID:  optionalString(s, fieldDocumentID),
		VersionID:   optionalString(s, fieldVersionID),
		CreatedBy:   optionalString(s, fieldCreatedBy),
		Description: optionalString(s, fieldDescription),
		Tags:        stringList(s, fieldTags),
	}
	if content := optionalString(s, fieldContent); content != "" {
		snap.Content = []byte(content)
	}
	if raw := optionalString(s, fieldCreatedAt); raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", fieldCreatedAt, err)
		}
		snap.CreatedAt = createdAt
	}
	return snap, nil
}
