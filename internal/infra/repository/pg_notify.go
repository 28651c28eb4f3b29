package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 他インスタンスへ変更を伝えるチャネル。payloadはコレクション名
const ChangeChannel = "woodify_changes"

// PgNotifier は書き込み後に pg_notify する
type PgNotifier struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewPgNotifier(db *gorm.DB, log *zap.Logger) *PgNotifier {
	return &PgNotifier{db: db, log: log}
}

// Notify は失敗してもエラーを返さない（書き込み自体は成功している）
func (n *PgNotifier) Notify(ctx context.Context, collection string) {
	if err := n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", ChangeChannel, collection).Error; err != nil {
		n.log.Warn("pg_notify failed", zap.String("collection", collection), zap.Error(err))
	}
}

// PgListener は LISTEN して受けた通知をhubに流す
type PgListener struct {
	dsn   string
	hub   *ChangeHub
	log   *zap.Logger
	retry time.Duration
}

func NewPgListener(dsn string, hub *ChangeHub, log *zap.Logger) *PgListener {
	return &PgListener{dsn: dsn, hub: hub, log: log, retry: 3 * time.Second}
}

// Run はctxが終わるまで接続し直しながら待ち受ける
func (l *PgListener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Warn("change listener disconnected", zap.Error(err), zap.Duration("retry", l.retry))

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retry):
		}
	}
}

func (l *PgListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}
	// 切断中の変更を取りこぼさないよう全購読を読み直す
	l.hub.NotifyAll()
	l.log.Info("change listener connected", zap.String("channel", ChangeChannel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.hub.Notify(ctx, n.Payload)
	}
}
