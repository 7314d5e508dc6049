package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Renan-T/chart-auto-magic/internal/store"
)

// Key is the single record holding all preferences.
const Key = "autodash:prefs"

const (
	AggResample = "resample"
	AggGroupBy  = "groupby"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

var ErrInvalidValue = errors.New("prefs: invalid value")

type Prefs struct {
	AggMode     string `json:"agg_mode"`
	DropAllZero bool   `json:"drop_all_zero"`
	Theme       string `json:"theme"`
}

func Defaults() Prefs {
	return Prefs{AggMode: AggResample, DropAllZero: true, Theme: ThemeLight}
}

// Store is the process-wide preferences capability. Reads are served from memory;
// every setter rewrites the whole record.
type Store struct {
	mu  sync.Mutex
	kv  store.KV
	cur Prefs
}

// Open loads the record once and writes the effective values back, so the record
// exists from the first start on. A record without drop_all_zero reads as false;
// missing or unknown agg_mode and theme fall back to their defaults.
func Open(ctx context.Context, kv store.KV, log *slog.Logger) (*Store, error) {
	cur := Defaults()
	b, err := kv.Get(ctx, Key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load prefs: %w", err)
	default:
		var rec Prefs
		if err := json.Unmarshal(b, &rec); err != nil {
			log.Warn("prefs record unreadable, using defaults", slog.String("err", err.Error()))
			break
		}
		cur.DropAllZero = rec.DropAllZero
		if validAggMode(rec.AggMode) {
			cur.AggMode = rec.AggMode
		}
		if validTheme(rec.Theme) {
			cur.Theme = rec.Theme
		}
	}
	s := &Store{kv: kv, cur: cur}
	if err := s.save(ctx, cur); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *Store) SetAggMode(ctx context.Context, mode string) error {
	if !validAggMode(mode) {
		return fmt.Errorf("%w: agg_mode %q", ErrInvalidValue, mode)
	}
	return s.update(ctx, func(p *Prefs) { p.AggMode = mode })
}

func (s *Store) SetDropAllZero(ctx context.Context, v bool) error {
	return s.update(ctx, func(p *Prefs) { p.DropAllZero = v })
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if !validTheme(theme) {
		return fmt.Errorf("%w: theme %q", ErrInvalidValue, theme)
	}
	return s.update(ctx, func(p *Prefs) { p.Theme = theme })
}

func (s *Store) update(ctx context.Context, fn func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cur
	fn(&next)
	if err := s.save(ctx, next); err != nil {
		return err
	}
	s.cur = next
	return nil
}

func (s *Store) save(ctx context.Context, p Prefs) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, Key, b); err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	return nil
}

func validAggMode(m string) bool { return m == AggResample || m == AggGroupBy }
func validTheme(t string) bool   { return t == ThemeLight || t == ThemeDark }
