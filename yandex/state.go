package yandex

import (
	"context"
	"errors"
	"sync"

	"github.com/xeptore/yamusic/yandex/api"
	"github.com/xeptore/yamusic/yandex/downloadinfo"
)

var ErrNotAuthenticated = errors.New("yandex music: account has no uid, the token is missing or invalid")

// State is the connection context shared by a Client and every object it
// returns. Domain objects keep a reference to it to issue follow-up calls.
//
// The track and user maps are identity maps: entries are overwritten on
// insert and never evicted.
type State struct {
	http     *api.HTTPClient
	resolver *downloadinfo.Resolver

	mux    sync.RWMutex
	userID ID
	tracks map[ID]*Track
	users  map[ID]*User
}

func NewState(http *api.HTTPClient) *State {
	return &State{
		http:     http,
		resolver: downloadinfo.NewResolver(http),
		mux:      sync.RWMutex{},
		userID:   "",
		tracks:   make(map[ID]*Track),
		users:    make(map[ID]*User),
	}
}

func (s *State) HTTP() *api.HTTPClient {
	return s.http
}

func (s *State) Resolver() *downloadinfo.Resolver {
	return s.resolver
}

// Identify fetches the account status and remembers the user id of the
// token owner. Anonymous sessions get an account without uid.
func (s *State) Identify(ctx context.Context) (*Account, error) {
	resp, err := s.http.AccountStatus(ctx)
	if nil != err {
		return nil, err
	}

	var status accountStatus
	if err := resp.Decode(&status); nil != err {
		return nil, err
	}

	account := status.account()
	if account.UID != "" {
		s.mux.Lock()
		s.userID = account.UID
		s.mux.Unlock()
	}
	return account, nil
}

// UserID returns the id of the authenticated user, identifying on first use.
// Concurrent first calls may both identify; they store the same value.
func (s *State) UserID(ctx context.Context) (ID, error) {
	s.mux.RLock()
	id := s.userID
	s.mux.RUnlock()
	if id != "" {
		return id, nil
	}

	account, err := s.Identify(ctx)
	if nil != err {
		return "", err
	}
	if account.UID == "" {
		return "", ErrNotAuthenticated
	}
	return account.UID, nil
}

// StoreTrack caches t by id and returns it.
func (s *State) StoreTrack(t *Track) *Track {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.tracks[t.ID] = t
	return t
}

func (s *State) Track(id ID) (*Track, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	t, ok := s.tracks[id]
	return t, ok
}

func (s *State) StoreUser(u *User) *User {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.users[u.UID] = u
	return u
}

func (s *State) User(id ID) (*User, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *State) storeTracks(tracks []*Track) []*Track {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, t := range tracks {
		s.tracks[t.ID] = t
	}
	return tracks
}
