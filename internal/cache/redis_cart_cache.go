package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
	"github.com/redis/go-redis/v9"
)

const baseTTL = 15 * time.Minute

// RedisCartCache stores carts as JSON under the owner's key.
type RedisCartCache struct {
	client  redis.Cmdable
	baseTTL time.Duration
}

func NewRedisCartCache(client redis.Cmdable) (*RedisCartCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	return &RedisCartCache{
		client:  client,
		baseTTL: baseTTL,
	}, nil
}

type cartDTO struct {
	ID           uuid.UUID     `json:"id"`
	UserID       string        `json:"user_id,omitempty"`
	SessionToken string        `json:"session_token,omitempty"`
	Items        []cartItemDTO `json:"items"`
	CreatedAt    time.Time     `json:"created_at"`
}

type cartItemDTO struct {
	ID              uuid.UUID `json:"id"`
	PurchasableType string    `json:"purchasable_type"`
	PurchasableID   string    `json:"purchasable_id"`
	Quantity        int       `json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

func (c *RedisCartCache) Get(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	key, err := cacheKey(owner)
	if err != nil {
		return domain.Cart{}, err
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, port.ErrCacheMiss
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("client.Get: %w", err)
	}

	var dto cartDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return fromDTO(dto), nil
}

func (c *RedisCartCache) Set(ctx context.Context, cart domain.Cart) error {
	key, err := cacheKey(cart.Owner)
	if err != nil {
		return err
	}

	data, err := json.Marshal(toDTO(cart))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	jitter := time.Duration(rand.IntN(5)) * time.Minute
	if err := c.client.Set(ctx, key, data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (c *RedisCartCache) Delete(ctx context.Context, owner domain.CartOwner) error {
	key, err := cacheKey(owner)
	if err != nil {
		return err
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}

func cacheKey(owner domain.CartOwner) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	if owner.UserID != "" {
		return "cart:user:" + owner.UserID, nil
	}
	return "cart:session:" + owner.SessionToken, nil
}

func toDTO(cart domain.Cart) cartDTO {
	dto := cartDTO{
		ID:           cart.ID,
		UserID:       cart.Owner.UserID,
		SessionToken: cart.Owner.SessionToken,
		Items:        make([]cartItemDTO, 0, len(cart.Items)),
		CreatedAt:    cart.CreatedAt,
	}
	for _, item := range cart.Items {
		dto.Items = append(dto.Items, cartItemDTO{
			ID:              item.ID,
			PurchasableType: item.Ref.Type,
			PurchasableID:   item.Ref.ID,
			Quantity:        item.Quantity,
			CreatedAt:       item.CreatedAt,
		})
	}
	return dto
}

func fromDTO(dto cartDTO) domain.Cart {
	cart := domain.Cart{
		ID:        dto.ID,
		Owner:     domain.CartOwner{UserID: dto.UserID, SessionToken: dto.SessionToken},
		CreatedAt: dto.CreatedAt,
	}
	for _, item := range dto.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        item.ID,
			Ref:       domain.PurchasableRef{Type: item.PurchasableType, ID: item.PurchasableID},
			Quantity:  item.Quantity,
			CreatedAt: item.CreatedAt,
		})
	}
	return cart
}
