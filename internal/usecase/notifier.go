package usecase

import (
	"context"
	"time"

	"sushiramen/internal/logging"
	"sushiramen/internal/notification"
)

// Notifier はメール送信イベントを渡す先（プロセス内キュー or Kafka）
type Notifier interface {
	Publish(ctx context.Context, ev notification.Event) error
}

const publishTimeout = 5 * time.Second

// publishBestEffort はcommit後に呼ぶ。失敗してもログだけで呼び出し元には返さない
func publishBestEffort(ctx context.Context, n Notifier, ev notification.Event) {
	if n == nil {
		return
	}
	// リクエストが終わってもキャンセルされないようにする
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.Publish(pctx, ev); err != nil {
		logging.FromContext(ctx).Error("notification publish failed",
			"event_id", ev.ID, "kind", ev.Kind, "order_id", ev.OrderID, "error", err)
	}
}

// Clock は現在時刻（テストで固定する）
type Clock interface {
	Now() time.Time
}
