package error_notificator

import "context"

type Notificator interface {
	// Notify сообщает об ошибке оператору
	Notify(ctx context.Context, err error, details string) error
}
