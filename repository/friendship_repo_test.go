package repository

import (
	"context"
	"testing"
	"time"

	"challenge_hub/model"
	"challenge_hub/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), utils.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection, otherwise every pooled conn sees its own empty :memory: db
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Friendship{}))
	return db
}

func seedUsers(t *testing.T, repo *UserRepo, pseudos ...string) []*model.User {
	t.Helper()

	users := make([]*model.User, 0, len(pseudos))
	for i, pseudo := range pseudos {
		u := &model.User{
			Pseudo:       pseudo,
			Status:       model.UserStatusActive,
			LastActiveAt: baseTime.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), u))
		users = append(users, u)
	}
	return users
}

func TestUserRepo_GetByID(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(newTestDB(t))
	seeded := seedUsers(t, users, "alice")

	got, err := users.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Pseudo)
	assert.True(t, got.IsActive())

	missing, err := users.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_TouchActivity(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(newTestDB(t))
	seeded := seedUsers(t, users, "alice")

	later := baseTime.Add(time.Hour)
	require.NoError(t, users.TouchActivity(ctx, seeded[0].ID, later))

	got, err := users.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.True(t, got.LastActiveAt.Equal(later))
}

func TestFriendshipRepo_FindActiveIgnoresRejected(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, NewUserRepo(db), "alice", "bob")
	repo := NewFriendshipRepo(db)

	req := model.NewFriendRequest(u[0].ID, u[1].ID, baseTime)
	require.NoError(t, repo.Create(ctx, req))

	found, err := repo.FindActive(ctx, u[1].ID, u[0].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, req.ID, found.ID)
	assert.Equal(t, u[0].ID, found.RequesterID)

	rejected, err := repo.RespondPending(ctx, u[0].ID, u[1].ID, model.FriendshipRejected, baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, model.FriendshipRejected, rejected.Status)

	found, err = repo.FindActive(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	history, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, history)
	assert.Equal(t, model.FriendshipRejected, history.Status)
	require.NotNil(t, history.RespondedAt)
}

func TestFriendshipRepo_ActivePairIsUnique(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, NewUserRepo(db), "alice", "bob")
	repo := NewFriendshipRepo(db)

	require.NoError(t, repo.Create(ctx, model.NewFriendRequest(u[0].ID, u[1].ID, baseTime)))

	// opposite direction normalizes to the same pair
	err := repo.Create(ctx, model.NewFriendRequest(u[1].ID, u[0].ID, baseTime.Add(time.Second)))
	assert.Error(t, err)
}

func TestFriendshipRepo_RejectedRowDoesNotBlockNewRequest(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, NewUserRepo(db), "alice", "bob")
	repo := NewFriendshipRepo(db)

	require.NoError(t, repo.Create(ctx, model.NewFriendRequest(u[0].ID, u[1].ID, baseTime)))
	_, err := repo.RespondPending(ctx, u[0].ID, u[1].ID, model.FriendshipRejected, baseTime.Add(time.Minute))
	require.NoError(t, err)

	fresh := model.NewFriendRequest(u[1].ID, u[0].ID, baseTime.Add(2*time.Minute))
	require.NoError(t, repo.Create(ctx, fresh))

	found, err := repo.FindActive(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, fresh.ID, found.ID)
	assert.Equal(t, u[1].ID, found.RequesterID)
}

func TestFriendshipRepo_RespondPendingRequiresAddressee(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, NewUserRepo(db), "alice", "bob")
	repo := NewFriendshipRepo(db)

	require.NoError(t, repo.Create(ctx, model.NewFriendRequest(u[0].ID, u[1].ID, baseTime)))

	// alice cannot accept her own outgoing request
	got, err := repo.RespondPending(ctx, u[1].ID, u[0].ID, model.FriendshipAccepted, baseTime)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.RespondPending(ctx, u[0].ID, u[1].ID, model.FriendshipAccepted, baseTime)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.FriendshipAccepted, got.Status)

	// already handled
	got, err = repo.RespondPending(ctx, u[0].ID, u[1].ID, model.FriendshipAccepted, baseTime)
	require.NoError(t, err)
	assert.Nil(t, got)

	active, err := repo.FindActive(ctx, u[1].ID, u[0].ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, model.FriendshipAccepted, active.Status)
}

func TestFriendshipRepo_DeleteAccepted(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, NewUserRepo(db), "alice", "bob")
	repo := NewFriendshipRepo(db)

	deleted, err := repo.DeleteAccepted(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	require.NoError(t, repo.Create(ctx, model.NewFriendRequest(u[0].ID, u[1].ID, baseTime)))

	// pending edges are not removed by DeleteAccepted
	deleted, err = repo.DeleteAccepted(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	_, err = repo.RespondPending(ctx, u[0].ID, u[1].ID, model.FriendshipAccepted, baseTime)
	require.NoError(t, err)

	deleted, err = repo.DeleteAccepted(ctx, u[1].ID, u[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	found, err := repo.FindActive(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFriendshipRepo_DeletePending(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, NewUserRepo(db), "alice", "bob")
	repo := NewFriendshipRepo(db)

	require.NoError(t, repo.Create(ctx, model.NewFriendRequest(u[0].ID, u[1].ID, baseTime)))

	// only the requester's own request matches
	deleted, err := repo.DeletePending(ctx, u[1].ID, u[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	deleted, err = repo.DeletePending(ctx, u[0].ID, u[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestFriendshipRepo_ListFriendsOrderedByActivity(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepo(db)
	u := seedUsers(t, users, "alice", "bob", "carol", "dave")
	repo := NewFriendshipRepo(db)

	// alice befriends bob and carol; alice -> dave stays pending
	for _, other := range []*model.User{u[1], u[2]} {
		require.NoError(t, repo.Create(ctx, model.NewFriendRequest(u[0].ID, other.ID, baseTime)))
		_, err := repo.RespondPending(ctx, u[0].ID, other.ID, model.FriendshipAccepted, baseTime)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Create(ctx, model.NewFriendRequest(u[0].ID, u[3].ID, baseTime)))

	// bob becomes the most recently active friend
	require.NoError(t, users.TouchActivity(ctx, u[1].ID, baseTime.Add(time.Hour)))

	friends, err := repo.ListFriends(ctx, u[0].ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "bob", friends[0].Pseudo)
	assert.Equal(t, "carol", friends[1].Pseudo)

	bobFriends, err := repo.ListFriends(ctx, u[1].ID)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, u[0].ID, bobFriends[0].ID)

	daveFriends, err := repo.ListFriends(ctx, u[3].ID)
	require.NoError(t, err)
	assert.Empty(t, daveFriends)
}

func TestFriendshipRepo_ListPending(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := seedUsers(t, NewUserRepo(db), "alice", "bob", "carol")
	repo := NewFriendshipRepo(db)

	older := model.NewFriendRequest(u[1].ID, u[0].ID, baseTime)
	newer := model.NewFriendRequest(u[2].ID, u[0].ID, baseTime.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	received, err := repo.ListPendingReceived(ctx, u[0].ID)
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, newer.ID, received[0].ID)
	assert.Equal(t, older.ID, received[1].ID)

	sent, err := repo.ListPendingSent(ctx, u[0].ID)
	require.NoError(t, err)
	assert.Empty(t, sent)

	sent, err = repo.ListPendingSent(ctx, u[1].ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, older.ID, sent[0].ID)
}
