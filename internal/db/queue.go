package db

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var ErrQueueClosed = errors.New("db queue closed")

type queueResult struct {
	value interface{}
	err   error
}

type queueJob struct {
	fn     func(db *sqlx.DB) (interface{}, error)
	result chan queueResult
}

// DBQueue runs every write on a single goroutine so read-modify-write
// sequences issued by this process never interleave. Reads go straight to DB().
type DBQueue struct {
	db      *sqlx.DB
	dialect Dialect
	jobs    chan queueJob
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewDBQueue(db *sqlx.DB) *DBQueue {
	dialect := DialectSQLite
	if db.DriverName() == "postgres" {
		dialect = DialectPostgres
	}

	q := &DBQueue{
		db:      db,
		dialect: dialect,
		jobs:    make(chan queueJob),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *DBQueue) run() {
	defer close(q.stopped)
	for {
		select {
		case job := <-q.jobs:
			job.result <- q.exec(job.fn)
		case <-q.done:
			return
		}
	}
}

func (q *DBQueue) exec(fn func(db *sqlx.DB) (interface{}, error)) (res queueResult) {
	defer func() {
		if r := recover(); r != nil {
			res = queueResult{err: errors.Errorf("db queue job panicked: %v", r)}
		}
	}()
	value, err := fn(q.db)
	return queueResult{value: value, err: err}
}

// Execute runs fn on the writer goroutine and waits for its result.
func (q *DBQueue) Execute(fn func(db *sqlx.DB) (interface{}, error)) (interface{}, error) {
	job := queueJob{fn: fn, result: make(chan queueResult, 1)}

	select {
	case <-q.done:
		return nil, ErrQueueClosed
	case q.jobs <- job:
	}

	res := <-job.result
	return res.value, res.err
}

// ExecuteTx runs fn inside a transaction on the writer goroutine. The
// transaction is rolled back when fn returns an error.
func (q *DBQueue) ExecuteTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	_, err := q.Execute(func(db *sqlx.DB) (interface{}, error) {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return nil, errors.Wrap(err, "begin tx")
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		return nil, errors.Wrap(tx.Commit(), "commit tx")
	})
	return err
}

func (q *DBQueue) DB() *sqlx.DB {
	return q.db
}

func (q *DBQueue) Dialect() Dialect {
	return q.dialect
}

// Close stops the writer goroutine. Pending Execute calls fail with
// ErrQueueClosed; the database itself stays open.
func (q *DBQueue) Close() {
	q.once.Do(func() {
		close(q.done)
		<-q.stopped
	})
}
