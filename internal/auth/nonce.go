package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"dealer-portal/internal/domain"
)

// Nonce actions, one per protected operation.
const (
	ActionSearch       = "dealer_search"
	ActionCart         = "dealer_cart"
	ActionPlaceOrder   = "dealer_place_order"
	ActionCancelOrder  = "dealer_cancel_order"
	ActionAccount      = "dealer_account"
	ActionUpdateStatus = "warehouse_update_order"
)

// Actions lists every nonce action a client may request.
var Actions = []string{
	ActionSearch,
	ActionCart,
	ActionPlaceOrder,
	ActionCancelOrder,
	ActionAccount,
	ActionUpdateStatus,
}

const nonceLength = 20

// Nonces issues and checks action-scoped tokens bound to a session. A nonce
// stays valid for between half and all of the configured lifetime.
type Nonces struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewNonces(secret string, lifetime time.Duration) *Nonces {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Nonces{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

func (n *Nonces) tick() int64 {
	half := int64(n.lifetime / 2)
	return n.now().UnixNano()/half + 1
}

func (n *Nonces) sign(tick int64, action string, s domain.Session) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(action))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatUint(s.User.ID, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(s.ID))
	return hex.EncodeToString(mac.Sum(nil))[:nonceLength]
}

func (n *Nonces) Create(action string, s domain.Session) string {
	return n.sign(n.tick(), action, s)
}

// Verify accepts nonces from the current or the previous tick.
func (n *Nonces) Verify(action string, s domain.Session, nonce string) bool {
	if len(nonce) != nonceLength {
		return false
	}
	t := n.tick()
	for _, tick := range []int64{t, t - 1} {
		if hmac.Equal([]byte(nonce), []byte(n.sign(tick, action, s))) {
			return true
		}
	}
	return false
}
