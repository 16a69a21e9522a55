package fakeuserrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users     map[int64]*users.User
	usernames map[string]int64 // username to user id
	nextID    int64
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:     make(map[int64]*users.User),
		usernames: make(map[string]int64),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == 0 {
		if id, ok := ur.usernames[user.Username]; ok {
			user.ID = id
		} else {
			ur.nextID++
			user.ID = ur.nextID
		}
	}
	if user.ID > ur.nextID {
		ur.nextID = user.ID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	stored := *user
	ur.users[user.ID] = &stored
	ur.usernames[user.Username] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id int64) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrIdentityNotFound
	}
	found := *u
	return &found, nil
}

func (ur *FakeUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.usernames[username]
	ur.lock.RUnlock()

	if !ok {
		return nil, errors.ErrIdentityNotFound
	}
	return ur.GetByID(ctx, id)
}

func (ur *FakeUserRepo) GetByExternalID(_ context.Context, externalID string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	for _, u := range ur.users {
		if externalID != "" && u.ExternalID == externalID {
			found := *u
			return &found, nil
		}
	}
	return nil, errors.ErrIdentityNotFound
}

func (ur *FakeUserRepo) List(_ context.Context, offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		u := *v
		userList = append(userList, &u)
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})

	if offset >= len(userList) {
		return nil, nil
	}
	end := len(userList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return userList[offset:end], nil
}
