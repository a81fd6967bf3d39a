package integration

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/library-backlog/internal/adapter/notify"
	"github.com/rl1809/library-backlog/internal/adapter/storage"
	"github.com/rl1809/library-backlog/internal/core/service"
)

type testEnv struct {
	redis     *redis.Client
	mysql     *sqlx.DB
	catalogue *storage.SQLCatalogue
	cleanup   func()
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/library?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := storage.OpenMySQL(context.Background(), mysqlDSN)
	if err != nil {
		rdb.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	catalogue := storage.NewSQLCatalogue(db)
	require.NoError(t, catalogue.Migrate(context.Background()))
	require.NoError(t, catalogue.Reset(context.Background()))

	return &testEnv{
		redis:     rdb,
		mysql:     db,
		catalogue: catalogue,
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func TestIntegration_ReturnGrantsBacklogAndPublishes(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel := "library.events.integration"
	sub := env.redis.Subscribe(ctx, channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc := service.NewLibraryService(env.catalogue, 10, 10,
		service.WithPublisher(notify.NewRedisPublisher(env.redis, channel)))

	_, err = svc.AddBook(ctx, 7, "Dune", "Frank Herbert")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, 7, 1, "Alice")
	require.NoError(t, err)
	res, err := svc.Borrow(ctx, 7, 2, "Bob")
	require.NoError(t, err)
	require.Equal(t, service.BorrowOutcomeQueued, res.Outcome)

	ret, err := svc.Return(ctx, 7)
	require.NoError(t, err)
	require.Len(t, ret.Grants, 1)
	assert.Equal(t, "Bob", ret.Grants[0].Request.RequesterName)

	// Verify MySQL row reflects the grant
	var available bool
	require.NoError(t, env.mysql.GetContext(ctx, &available, `SELECT available FROM books WHERE book_id = 7`))
	assert.False(t, available)

	// Verify events arrived in operation order
	want := []string{"book_added", "book_borrowed", "request_queued", "book_returned", "request_granted"}
	for _, typ := range want {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, jsoniter.UnmarshalFromString(msg.Payload, &payload))
		assert.Equal(t, typ, payload["type"])
	}
}

func TestIntegration_ConcurrentBorrowersAgainstMySQL(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	queueCapacity := 5
	totalRequests := 20

	svc := service.NewLibraryService(env.catalogue, queueCapacity, 10)
	_, err := svc.AddBook(ctx, 1, "Emma", "Jane Austen")
	require.NoError(t, err)

	var borrowed, queued, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			res, err := svc.Borrow(ctx, 1, userID, "reader")
			switch {
			case err != nil:
				rejected.Add(1)
			case res.Outcome == service.BorrowOutcomeBorrowed:
				borrowed.Add(1)
			default:
				queued.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), borrowed.Load())
	assert.Equal(t, int32(queueCapacity), queued.Load())
	assert.Equal(t, int32(totalRequests-1-queueCapacity), rejected.Load())

	// Drain the backlog one return at a time
	for i := 0; i < queueCapacity; i++ {
		ret, err := svc.Return(ctx, 1)
		require.NoError(t, err)
		require.Len(t, ret.Grants, 1)
	}
	assert.Empty(t, svc.ListPendingRequests())
}
