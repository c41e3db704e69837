// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package backend

import (
	"context"
	"sync"

	"github.com/tomtom215/paperlens/internal/models"
)

// RefreshCall records one RefreshWeekly invocation on a FakeClient.
type RefreshCall struct {
	UserID  string
	Context *models.RecommendationContext
}

// SyncCall records one SyncSearchHistory invocation on a FakeClient.
type SyncCall struct {
	UserID  string
	Payload SearchHistoryPayload
}

// FakeClient is an in-memory Client for tests and dry runs.
type FakeClient struct {
	mu        sync.Mutex
	refreshes []RefreshCall
	syncs     []SyncCall

	// RefreshErr and SyncErr are returned by the respective calls when set.
	RefreshErr error
	SyncErr    error

	// BlockRefresh and BlockSync, when non-nil, are received from before
	// the respective call returns.
	BlockRefresh chan struct{}
	BlockSync    chan struct{}
}

var _ Client = (*FakeClient)(nil)

// NewFakeClient returns a FakeClient that accepts every call.
func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) RefreshWeekly(ctx context.Context, userID string, rc *models.RecommendationContext) error {
	f.mu.Lock()
	f.refreshes = append(f.refreshes, RefreshCall{UserID: userID, Context: rc})
	block := f.BlockRefresh
	err := f.RefreshErr
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *FakeClient) SyncSearchHistory(ctx context.Context, userID string, payload SearchHistoryPayload) error {
	f.mu.Lock()
	f.syncs = append(f.syncs, SyncCall{UserID: userID, Payload: payload})
	block := f.BlockSync
	err := f.SyncErr
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// SetRefreshErr changes the error returned by later refreshes.
func (f *FakeClient) SetRefreshErr(err error) {
	f.mu.Lock()
	f.RefreshErr = err
	f.mu.Unlock()
}

// SetSyncErr changes the error returned by later syncs.
func (f *FakeClient) SetSyncErr(err error) {
	f.mu.Lock()
	f.SyncErr = err
	f.mu.Unlock()
}

// Refreshes returns a copy of the recorded refresh calls.
func (f *FakeClient) Refreshes() []RefreshCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RefreshCall(nil), f.refreshes...)
}

// Syncs returns a copy of the recorded sync calls.
func (f *FakeClient) Syncs() []SyncCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SyncCall(nil), f.syncs...)
}

// RefreshCount returns how many refreshes userID received.
func (f *FakeClient) RefreshCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.refreshes {
		if c.UserID == userID {
			n++
		}
	}
	return n
}
