// Package txn runs multi-collection writes in a MongoDB transaction when the
// deployment supports it, and sequentially when it does not (standalone
// mongod, some DocumentDB versions).
package txn

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on client. If the server rejects
// transactions, fn is run once more without one.
func Run(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if logger != nil {
			logger.Info("transactions unsupported; running writes sequentially", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}

// notSupportedCodes are server codes meaning "no transactions here".
//   - 20:  IllegalOperation (e.g. transaction numbers on a standalone)
//   - 51:  IllegalOperation variant
//   - 263: OperationNotSupportedInTransaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err carries a server code meaning the
// deployment cannot run transactions. Other failures, including aborted
// or conflicting transactions, are returned to the caller as is.
func IsNotSupported(err error) bool {
	var ce mongo.CommandError
	return errors.As(err, &ce) && notSupportedCodes[ce.Code]
}
