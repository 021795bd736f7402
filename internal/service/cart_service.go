package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
	"github.com/rs/zerolog"
)

type CartService struct {
	carts    port.CartRepository
	resolver port.PurchasableResolver
	cache    port.CartCache
	logger   *zerolog.Logger
}

// NewCartService returns a cart service. cache may be nil.
func NewCartService(carts port.CartRepository, resolver port.PurchasableResolver, cache port.CartCache, logger *zerolog.Logger) (*CartService, error) {
	if carts == nil {
		return nil, fmt.Errorf("carts repository is nil")
	}
	if resolver == nil {
		return nil, fmt.Errorf("purchasable resolver is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &CartService{
		carts:    carts,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Current returns the caller's cart, creating it when missing. A signed in
// user absorbs the cart of their anonymous session. Anonymous callers without
// a session token get a new one in the returned cart's owner.
func (s *CartService) Current(ctx context.Context, userID, sessionToken string) (domain.Cart, error) {
	if userID == "" {
		if sessionToken == "" {
			sessionToken = uuid.NewString()
		}
		return s.getOrCreate(ctx, domain.CartOwner{SessionToken: sessionToken})
	}

	userOwner := domain.CartOwner{UserID: userID}
	cart, err := s.getOrCreate(ctx, userOwner)
	if err != nil {
		return domain.Cart{}, err
	}
	if sessionToken == "" {
		return cart, nil
	}

	sessionOwner := domain.CartOwner{SessionToken: sessionToken}
	sessionCart, err := s.load(ctx, sessionOwner)
	if errors.Is(err, domain.ErrCartNotFound) {
		return cart, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}

	if err := s.carts.MergeCarts(ctx, sessionCart.ID, cart.ID); err != nil {
		return domain.Cart{}, fmt.Errorf("carts.MergeCarts: %w", err)
	}
	s.invalidate(ctx, sessionOwner)
	s.invalidate(ctx, userOwner)

	s.logger.Info().
		Str("user_id", userID).
		Int("items", len(sessionCart.Items)).
		Msg("session cart merged")

	return s.load(ctx, userOwner)
}

// AddItem adds quantity of the referenced purchasable to the owner's cart.
func (s *CartService) AddItem(ctx context.Context, owner domain.CartOwner, ref domain.PurchasableRef, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	p, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("resolver.Resolve: %w", err)
	}

	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return domain.Cart{}, err
	}

	item, err := cart.AddItem(p, quantity)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("cart.AddItem: %w", err)
	}

	// the repository adds to the stored quantity
	err = s.carts.AddItem(ctx, cart.ID, domain.CartItem{ID: item.ID, Ref: item.Ref, Quantity: quantity})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.AddItem: %w", err)
	}
	s.invalidate(ctx, owner)

	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, owner domain.CartOwner, itemID uuid.UUID) (bool, error) {
	cart, err := s.load(ctx, owner)
	if errors.Is(err, domain.ErrCartNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	removed, err := s.carts.DeleteItem(ctx, cart.ID, itemID)
	if err != nil {
		return false, fmt.Errorf("carts.DeleteItem: %w", err)
	}
	if removed {
		s.invalidate(ctx, owner)
	}

	return removed, nil
}

func (s *CartService) Clear(ctx context.Context, owner domain.CartOwner) error {
	cart, err := s.load(ctx, owner)
	if errors.Is(err, domain.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
		return fmt.Errorf("carts.ClearItems: %w", err)
	}
	s.invalidate(ctx, owner)

	return nil
}

// ReclaimOrphans deletes carts whose user and session are both gone.
func (s *CartService) ReclaimOrphans(ctx context.Context) (int64, error) {
	n, err := s.carts.DeleteOrphanedCarts(ctx)
	if err != nil {
		return 0, fmt.Errorf("carts.DeleteOrphanedCarts: %w", err)
	}

	if n > 0 {
		s.logger.Info().Int64("carts", n).Msg("orphaned carts deleted")
	}

	return n, nil
}

// Resolve attaches the live purchasables to the cart items. Items that can't be
// resolved are left without one.
func (s *CartService) Resolve(ctx context.Context, cart *domain.Cart) {
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Purchasable != nil {
			continue
		}

		p, err := s.resolver.Resolve(ctx, item.Ref)
		if err != nil {
			s.logger.Warn().Err(err).Str("purchasable", item.Ref.String()).Msg("cart item not resolved")
			continue
		}
		item.Purchasable = p
	}
}

func (s *CartService) getOrCreate(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	cart, err := s.load(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{}, err
	}

	cart, err = s.carts.CreateCart(ctx, owner)
	if err != nil {
		// a concurrent request may have created it
		if existing, getErr := s.carts.GetCart(ctx, owner); getErr == nil {
			return existing, nil
		}
		return domain.Cart{}, fmt.Errorf("carts.CreateCart: %w", err)
	}

	return cart, nil
}

// load reads through the cache. Cache failures are logged and fall back to the repository.
func (s *CartService) load(ctx context.Context, owner domain.CartOwner) (domain.Cart, error) {
	if s.cache != nil {
		cart, err := s.cache.Get(ctx, owner)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, port.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("cart cache get failed")
		}
	}

	cart, err := s.carts.GetCart(ctx, owner)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.Cart{}, err
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.GetCart: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cart); err != nil {
			s.logger.Warn().Err(err).Msg("cart cache set failed")
		}
	}

	return cart, nil
}

func (s *CartService) invalidate(ctx context.Context, owner domain.CartOwner) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, owner); err != nil {
		s.logger.Warn().Err(err).Msg("cart cache delete failed")
	}
}
