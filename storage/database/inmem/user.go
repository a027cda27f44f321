package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/makonzi/uwepo/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

// query must be called with at least the read lock held.
func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.users {
		if existing.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = repo.db.nextID()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmployeeID(ctx context.Context, employeeID string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.users {
		if usr.EmployeeID == employeeID {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.query() {
		if filter.CampusID != "" && usr.CampusID != filter.CampusID {
			continue
		}
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) byEmail(email string) (*user.User, error) {
	for _, usr := range repo.db.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return nil, user.ErrNotFound
}

func (repo *userRepository) SetUserOTP(ctx context.Context, email, secret string, expires time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, err := repo.byEmail(email)
	if err != nil {
		return err
	}
	usr.OTPSecret = secret
	usr.OTPExpires = &expires
	return nil
}

func (repo *userRepository) ActivateUser(ctx context.Context, email string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, err := repo.byEmail(email)
	if err != nil {
		return err
	}
	usr.IsActive = true
	usr.OTPSecret = ""
	usr.OTPExpires = nil
	return nil
}

func (repo *userRepository) ClearUserOTP(ctx context.Context, email string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, err := repo.byEmail(email)
	if err != nil {
		return err
	}
	usr.OTPSecret = ""
	usr.OTPExpires = nil
	return nil
}

func (repo *userRepository) SetUserPassword(ctx context.Context, email string, hash []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, err := repo.byEmail(email)
	if err != nil {
		return err
	}
	usr.PasswordHash = hash
	usr.UpdatedAt = time.Now().UTC()
	return nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.LastLogin = t
	usr.FirstLogin = false
	return nil
}

func (repo *userRepository) FlagRedNotice(ctx context.Context, id, reason string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr, ok := repo.db.users[id]
	if !ok {
		return user.ErrNotFound
	}
	usr.RedNoticeIssued = true
	usr.RedNoticeReason = reason
	return nil
}
