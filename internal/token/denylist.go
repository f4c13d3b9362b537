// Package token はステートレス署名トークンの発行・検証・更新・失効を提供する。
// サーバー側セッションストアを持たず、ログアウト/リフレッシュの失効は
// トークンID（jti）を自然満了まで追跡する有界な失効セットで実現する。
package token

import (
	"sync"
	"time"
)

// Denylist は失効済みトークンIDの有界セット。
// エントリはトークンの自然満了時刻まで保持すれば十分であり、
// 満了済みエントリは参照時に遅延削除、またはSweepでまとめて削除される。
// 複数のリクエストgoroutineから並行アクセスされるためミューテックスで保護する。
type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewDenylist はDenylistを生成する。
func NewDenylist() *Denylist {
	return &Denylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke は指定トークンIDを満了時刻まで失効として記録する。冪等。
// すでに満了済みのトークンは記録しない（検証側で期限切れとして拒否される）。
func (d *Denylist) Revoke(jti string, expiresAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !expiresAt.After(d.now()) {
		return
	}
	d.entries[jti] = expiresAt
}

// IsRevoked は指定トークンIDが失効済みかを返す。
// 満了済みエントリはこの時点で削除する（遅延スイープ）。
func (d *Denylist) IsRevoked(jti string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.entries[jti]
	if !ok {
		return false
	}
	if !expiresAt.After(d.now()) {
		delete(d.entries, jti)
		return false
	}
	return true
}

// Sweep は満了済みエントリをまとめて削除し、削除件数を返す。
// serveモードではタイマーで定期実行される。
func (d *Denylist) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for jti, expiresAt := range d.entries {
		if !expiresAt.After(now) {
			delete(d.entries, jti)
			removed++
		}
	}
	return removed
}

// Len は現在追跡中のエントリ数を返す。
func (d *Denylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
