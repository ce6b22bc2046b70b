// Package profile manages the signed-in user's preferences.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/session"
	"github.com/julianstephens/bloomlet/internal/storage"
	"github.com/julianstephens/bloomlet/internal/validation"
)

var ErrStorageUnavailable = errors.New("profile storage unavailable")

// DefaultReminderTime is used until the user picks one.
const DefaultReminderTime = "20:00"

// Default returns the profile a new user starts with.
func Default(userID string) models.Profile {
	return models.Profile{
		ID:           userID,
		WeeklyGoal:   constants.DefaultWeeklyGoal,
		ReminderTime: DefaultReminderTime,
		Theme:        models.ThemeAuto,
	}
}

// Service holds the current profile and writes changes through to the
// remote when online and to the local cache always.
type Service struct {
	mu      sync.Mutex
	remote  storage.ProfileBackend
	local   *storage.Local
	session session.Source
	now     func() time.Time
	goal    int

	reminderOn bool
	reminderAt string

	current models.Profile
	loaded  bool
}

type Option func(*Service)

// WithDefaultGoal sets the weekly goal given to users with no stored profile.
func WithDefaultGoal(goal int) Option {
	return func(s *Service) {
		if validation.ValidateWeeklyGoal(goal) == nil {
			s.goal = goal
		}
	}
}

// WithDefaultReminder sets the reminder given to users with no stored
// profile. An invalid time is ignored.
func WithDefaultReminder(enabled bool, at string) Option {
	return func(s *Service) {
		if validation.ValidateReminderTime(at) == nil {
			s.reminderOn, s.reminderAt = enabled, at
		}
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a service. remote may be nil.
func New(remote storage.ProfileBackend, local *storage.Local, sess session.Source, opts ...Option) *Service {
	if sess == nil {
		sess = session.None
	}
	s := &Service{
		remote:  remote,
		local:   local,
		session: sess,
		now:     time.Now,
		goal:    constants.DefaultWeeklyGoal,

		reminderAt: DefaultReminderTime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) owner() (string, bool) {
	if s.remote == nil {
		return constants.LocalUserID, false
	}
	id, ok := s.session.UserID()
	if !ok {
		return constants.LocalUserID, false
	}
	return id, true
}

// Load reads the profile from the remote when online, falling back to the
// local cache. A user with no stored profile gets Default.
func (s *Service) Load(ctx context.Context) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, online := s.owner()
	var remoteErr error
	if online {
		p, err := s.remote.GetProfile(ctx, userID)
		switch {
		case err == nil:
			s.set(fill(p, userID))
			if err := s.local.SaveProfile(s.current); err != nil {
				logger.Warn("Failed to refresh local profile cache", "error", err)
			}
			return s.current, nil
		case errors.Is(err, storage.ErrNotFound):
			logger.Debug("No remote profile yet, using defaults", "user", userID)
		default:
			remoteErr = err
			logger.Warn("Remote profile load failed, using local cache", "error", err)
		}
	}

	p, ok, err := s.local.Profile()
	if err != nil {
		if remoteErr == nil && online {
			s.set(s.defaults(userID))
			return s.current, nil
		}
		return models.Profile{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, errors.Join(remoteErr, err))
	}
	if !ok || (online && p.ID != userID) {
		p = s.defaults(userID)
	}
	s.set(fill(p, userID))
	return s.current, nil
}

// fill repairs fields a stored profile may be missing.
func fill(p models.Profile, userID string) models.Profile {
	def := Default(userID)
	if p.ID == "" {
		p.ID = userID
	}
	if validation.ValidateWeeklyGoal(p.WeeklyGoal) != nil {
		p.WeeklyGoal = def.WeeklyGoal
	}
	if validation.ValidateReminderTime(p.ReminderTime) != nil {
		p.ReminderTime = def.ReminderTime
	}
	if _, err := validation.ParseTheme(string(p.Theme)); err != nil {
		p.Theme = def.Theme
	}
	return p
}

func (s *Service) defaults(userID string) models.Profile {
	p := Default(userID)
	p.WeeklyGoal = s.goal
	p.ReminderEnabled = s.reminderOn
	p.ReminderTime = s.reminderAt
	return p
}

func (s *Service) set(p models.Profile) {
	s.current = p
	s.loaded = true
}

// Get returns the loaded profile, or defaults before the first Load.
func (s *Service) Get() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		id, _ := s.owner()
		return s.defaults(id)
	}
	return s.current
}

// Update applies fn to a copy of the profile, validates the result and
// persists it.
func (s *Service) Update(ctx context.Context, fn func(*models.Profile)) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, online := s.owner()
	next := s.current
	if !s.loaded {
		next = s.defaults(userID)
	}
	fn(&next)
	next.ID = userID
	next.UpdatedAt = s.now()
	if err := validation.ValidateProfile(next); err != nil {
		return models.Profile{}, err
	}

	var remoteErr error
	if online {
		if remoteErr = s.remote.SaveProfile(ctx, next); remoteErr != nil {
			logger.Warn("Remote profile save failed, keeping it locally", "error", remoteErr)
		}
	}
	localErr := s.local.SaveProfile(next)
	if localErr != nil && (!online || remoteErr != nil) {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, errors.Join(remoteErr, localErr))
	}
	if localErr != nil {
		logger.Warn("Failed to mirror profile to local cache", "error", localErr)
	}

	s.set(next)
	return next, nil
}

func (s *Service) SetWeeklyGoal(ctx context.Context, goal int) (models.Profile, error) {
	if err := validation.ValidateWeeklyGoal(goal); err != nil {
		return models.Profile{}, err
	}
	return s.Update(ctx, func(p *models.Profile) { p.WeeklyGoal = goal })
}

func (s *Service) SetDisplayName(ctx context.Context, name string) (models.Profile, error) {
	name = strings.TrimSpace(name)
	return s.Update(ctx, func(p *models.Profile) { p.DisplayName = name })
}

// SetReminder enables or disables the daily reminder. An empty at keeps the
// current time.
func (s *Service) SetReminder(ctx context.Context, enabled bool, at string) (models.Profile, error) {
	if at != "" {
		if err := validation.ValidateReminderTime(at); err != nil {
			return models.Profile{}, err
		}
	}
	return s.Update(ctx, func(p *models.Profile) {
		p.ReminderEnabled = enabled
		if at != "" {
			p.ReminderTime = at
		}
	})
}

func (s *Service) SetTheme(ctx context.Context, theme string) (models.Profile, error) {
	t, err := validation.ParseTheme(theme)
	if err != nil {
		return models.Profile{}, err
	}
	return s.Update(ctx, func(p *models.Profile) { p.Theme = t })
}
