// Package mockapi is a self-contained stand-in for the leave-tracking
// backend: the same routes, envelope, and auth discipline, backed by an
// in-memory store. The sync layer's integration tests and local development
// run against it; it never ships to production.
package mockapi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"leave-sync/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNoTeam       = errors.New("no team")
	ErrNotPending   = errors.New("leave request is not pending")
	ErrAlreadyAdded = errors.New("member already on the team")
)

type account struct {
	user         models.User
	passwordHash []byte
	tempPassword bool
}

// Store holds the mock backend's state behind one mutex. Handlers are the
// only callers; contention is irrelevant at mock scale.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*account // by email
	team     *models.Team
	pending  []models.Approval
	leaves   []models.LeaveRecord
	nextID   int
}

func NewStore() *Store {
	return &Store{accounts: make(map[string]*account)}
}

func (s *Store) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// AddAccount registers a login. Temp-password accounts surface on the
// pending-users feed until cleared.
func (s *Store) AddAccount(name, email, password, role string, temp bool) models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	s.mu.Lock()
	defer s.mu.Unlock()
	user := models.User{
		ID:        s.id("user"),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.accounts[email] = &account{user: user, passwordHash: hash, tempPassword: temp}
	return user
}

// Authenticate checks credentials and returns the account's user.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.Lock()
	acct, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		return models.User{}, ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return models.User{}, errors.New("invalid credentials")
	}
	return acct.user, nil
}

func (s *Store) Team() (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.team == nil {
		return nil, ErrNoTeam
	}
	team := *s.team
	team.Members = append([]models.Member(nil), s.team.Members...)
	return &team, nil
}

func (s *Store) CreateTeam(name, description, ownerID string) *models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.team = &models.Team{
		ID:          s.id("team"),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
	}
	team := *s.team
	return &team
}

func (s *Store) AddMember(email string) (models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.team == nil {
		return models.Member{}, ErrNoTeam
	}
	for _, m := range s.team.Members {
		if m.Email == email {
			return models.Member{}, ErrAlreadyAdded
		}
	}
	name := email
	if acct, ok := s.accounts[email]; ok {
		name = acct.user.Name
	}
	member := models.Member{
		ID:       s.id("member"),
		Name:     name,
		Email:    email,
		Role:     "member",
		JoinedAt: time.Now(),
	}
	s.team.Members = append(s.team.Members, member)
	return member, nil
}

func (s *Store) RemoveMember(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.team == nil {
		return ErrNoTeam
	}
	for i, m := range s.team.Members {
		if m.ID == id {
			s.team.Members = append(s.team.Members[:i], s.team.Members[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SubmitLeave files a pending request and mirrors it into the analytics
// feed, the way the real backend keeps the two views consistent.
func (s *Store) SubmitLeave(requester models.Member, from, to time.Time, leaveType, destination string) models.Approval {
	s.mu.Lock()
	defer s.mu.Unlock()
	approval := models.Approval{
		ID:          s.id("leave"),
		Requester:   requester,
		FromDate:    from,
		ToDate:      to,
		LeaveType:   leaveType,
		Destination: destination,
		SubmittedAt: time.Now(),
		Status:      models.StatusPending,
	}
	s.pending = append(s.pending, approval)
	s.leaves = append(s.leaves, models.LeaveRecord{
		ID:        approval.ID,
		MemberID:  requester.ID,
		FromDate:  from,
		ToDate:    to,
		LeaveType: leaveType,
		Status:    models.StatusPending,
		Days:      approval.Days(),
	})
	return approval
}

func (s *Store) PendingApprovals() []models.Approval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Approval(nil), s.pending...)
}

// Decide approves or rejects a pending request. The request leaves the
// pending feed entirely; clients learn the outcome by refetching.
func (s *Store) Decide(id string, status models.ApprovalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.pending {
		if a.ID != id {
			continue
		}
		if a.Status != models.StatusPending {
			return ErrNotPending
		}
		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		for j := range s.leaves {
			if s.leaves[j].ID == id {
				s.leaves[j].Status = status
			}
		}
		return nil
	}
	return ErrNotFound
}

func (s *Store) TeamLeaves(teamID string) ([]models.LeaveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.team == nil || s.team.ID != teamID {
		return nil, ErrNotFound
	}
	return append([]models.LeaveRecord(nil), s.leaves...), nil
}

func (s *Store) PendingUsers() []models.PendingUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PendingUser
	for _, acct := range s.accounts {
		if acct.tempPassword {
			out = append(out, models.PendingUser{
				ID:             acct.user.ID,
				Name:           acct.user.Name,
				Email:          acct.user.Email,
				TempPasswordAt: acct.user.CreatedAt,
				CreatedAt:      acct.user.CreatedAt,
			})
		}
	}
	return out
}

// Seed loads a small realistic data set for local development.
func (s *Store) Seed() {
	owner := s.AddAccount("Maya Chen", "maya@example.com", "password123", "manager", false)
	s.AddAccount("Jon Park", "jon@example.com", "password123", "member", false)
	s.AddAccount("Ana Souza", "ana@example.com", "changeme", "member", true)

	s.CreateTeam("Platform", "Platform engineering", owner.ID)
	m1, _ := s.AddMember("maya@example.com")
	m2, _ := s.AddMember("jon@example.com")

	now := time.Now()
	s.SubmitLeave(m2, now.AddDate(0, 0, 7), now.AddDate(0, 0, 11), "vacation", "Lisbon")
	approved := s.SubmitLeave(m1, now.AddDate(0, 0, -3), now.AddDate(0, 0, 1), "sick", "")
	_ = s.Decide(approved.ID, models.StatusApproved)
}
