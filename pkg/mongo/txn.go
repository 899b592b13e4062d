package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TxnRunner wraps a function in a MongoDB multi-document transaction.
// The session is bound into the context, so any repo call made with the
// inner context joins the transaction.
type TxnRunner struct{}

func (t *TxnRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := GetClient().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}

func findOneAndUpdateReturnAfter() options.Lister[options.FindOneAndUpdateOptions] {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
