package error_notificator

import (
	"context"

	"go.uber.org/zap"
)

// Service логирует ошибку и пересылает её в настроенный канал
type Service struct {
	infra Notificator
	log   *zap.SugaredLogger
}

func NewService(infra Notificator, log *zap.SugaredLogger) *Service {
	if infra == nil {
		infra = NopInfra{}
	}
	return &Service{infra: infra, log: log}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	s.log.Errorw("[error_notificator] "+details, "error", err)
	if nerr := s.infra.Notify(ctx, err, details); nerr != nil {
		s.log.Warnw("[error_notificator] send fail", "error", nerr)
		return nerr
	}
	return nil
}
