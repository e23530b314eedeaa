package impl

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MarketplaceOptions toggles store behaviour per deployment.
type MarketplaceOptions struct {
	PersistCatalog bool    // Write the catalog record after a listing is created
	UniquePhone    bool    // Reject signups reusing a registered phone number
	FeeRate        float64 // Fraction added to the subtotal at checkout
}

// MarketplaceDeps are the collaborators of one session's store.
type MarketplaceDeps struct {
	Repo      repository.SessionRepository
	Hasher    service.PINHasher
	Publisher service.EventPublisher
	Logger    *slog.Logger
	Options   MarketplaceOptions
	Now       func() time.Time // Defaults to time.Now
	NewID     func() string    // Defaults to uuid.NewString
}

type marketplaceStore struct {
	mu sync.Mutex

	repo      repository.SessionRepository
	hasher    service.PINHasher
	publisher service.EventPublisher
	logger    *slog.Logger
	options   MarketplaceOptions
	now       func() time.Time
	newID     func() string

	currentUser *entity.User
	products    []entity.Product // Newest first
	cart        entity.Cart
	orders      []entity.Order // Append order
	users       []*entity.User // Farmers and marketmen
}

// NewMarketplaceStore rehydrates a session's state through its repository.
func NewMarketplaceStore(ctx context.Context, deps MarketplaceDeps) (usecase.Marketplace, error) {
	snapshot, err := deps.Repo.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session records")
	}

	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	return &marketplaceStore{
		repo:        deps.Repo,
		hasher:      deps.Hasher,
		publisher:   deps.Publisher,
		logger:      deps.Logger,
		options:     deps.Options,
		now:         deps.Now,
		newID:       deps.NewID,
		currentUser: snapshot.CurrentUser,
		products:    snapshot.Products,
		orders:      snapshot.Orders,
		users:       snapshot.Users,
	}, nil
}

func (s *marketplaceStore) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// --- Account ---

// SignUp creates a user with role defaults and signs them in.
func (s *marketplaceStore) SignUp(ctx context.Context, input usecase.SignUpInput) (*usecase.AuthOutput, error) {
	if !input.Role.IsValid() {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("unknown role: " + input.Role.String()))
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Phone) == "" || input.PIN == "" {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("name, phone and PIN are required"))
	}

	// Hash outside the lock, bcrypt is deliberately slow
	pinHash, err := s.hasher.Hash(input.PIN)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPINHashFailed, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.options.UniquePhone && s.findByPhone(input.Phone) != nil {
		return nil, errors.WithStack(domainerrors.ErrPhoneAlreadyRegistered)
	}

	identity := entity.Identity{
		Name:           input.Name,
		Phone:          input.Phone,
		Address:        input.Address,
		Location:       input.Location,
		PINHash:        pinHash,
		ProfilePicture: input.ProfilePicture,
	}
	id := input.Role.String() + "_" + s.newID()

	var user *entity.User
	if input.Role == entity.RoleFarmer {
		user = entity.NewFarmer(id, identity)
	} else {
		user = entity.NewMarketman(id, identity)
	}

	s.users = append(s.users, user)
	s.currentUser = user.Clone()

	s.persist(ctx, "current user", func(ctx context.Context) error { return s.repo.SaveCurrentUser(ctx, s.currentUser) })
	s.persist(ctx, "user directory", func(ctx context.Context) error { return s.repo.SaveUsers(ctx, s.users) })

	s.log(ctx).InfoContext(ctx, "User signed up",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)

	return &usecase.AuthOutput{User: user.Clone(), Dashboard: user.Role.Dashboard()}, nil
}

// SignInWithPIN signs in the first directory user whose phone matches and whose PIN verifies.
func (s *marketplaceStore) SignInWithPIN(ctx context.Context, phone, pin string) (*usecase.AuthOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *entity.User
	for _, u := range s.users {
		if u.Phone == phone && s.hasher.Check(pin, u.PINHash) {
			found = u

			break
		}
	}
	if found == nil {
		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	s.currentUser = found.Clone()
	s.persist(ctx, "current user", func(ctx context.Context) error { return s.repo.SaveCurrentUser(ctx, s.currentUser) })

	s.log(ctx).InfoContext(ctx, "User signed in", slog.String("user_id", found.ID))

	return &usecase.AuthOutput{User: found.Clone(), Dashboard: found.Role.Dashboard()}, nil
}

// SignOut clears the current user; cart and ledger are kept.
func (s *marketplaceStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentUser = nil
	s.persist(ctx, "current user", func(ctx context.Context) error { return s.repo.SaveCurrentUser(ctx, nil) })

	return nil
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *marketplaceStore) CurrentUser() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentUser.Clone()
}

// --- Catalog ---

// ListProducts returns the catalog, newest listing first.
func (s *marketplaceStore) ListProducts() []entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.products)
}

// ProductByID looks a product up in the catalog.
func (s *marketplaceStore) ProductByID(id string) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.products, func(p entity.Product) bool { return p.ID == id })
	if idx < 0 {
		return entity.Product{}, false
	}

	return s.products[idx], true
}

// FarmerProducts returns the listings of one farmer, newest first.
func (s *marketplaceStore) FarmerProducts(farmerID string) []entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]entity.Product, 0)
	for _, p := range s.products {
		if p.FarmerID == farmerID {
			products = append(products, p)
		}
	}

	return products
}

// CreateProduct lists a product for the signed-in farmer and returns its id.
func (s *marketplaceStore) CreateProduct(ctx context.Context, input usecase.CreateProductInput) (string, error) {
	product, farmer, err := s.createProduct(ctx, input)
	if err != nil {
		return "", err
	}

	s.publish(ctx, &service.MarketEvent{
		Type:        service.MarketEventProductListed,
		FarmerID:    farmer.ID,
		FarmerName:  farmer.Name,
		ProductID:   product.ID,
		ProductName: product.Name,
	})

	return product.ID, nil
}

func (s *marketplaceStore) createProduct(ctx context.Context, input usecase.CreateProductInput) (entity.Product, *entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmer, err := s.requireRole(entity.RoleFarmer)
	if err != nil {
		return entity.Product{}, nil, err
	}
	if input.Price <= 0 {
		return entity.Product{}, nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("price must be positive"))
	}
	if strings.TrimSpace(input.Details.Name) == "" {
		return entity.Product{}, nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("product name is required"))
	}

	product := entity.Product{
		ID:          "prod_" + s.newID(),
		Name:        input.Details.Name,
		Description: input.Details.Description,
		Image:       input.Details.Image,
		ImageHint:   input.Details.ImageHint,
		FarmerID:    farmer.ID,
		Price:       input.Price,
		Rating:      0,
	}
	s.products = append([]entity.Product{product}, s.products...)

	if s.options.PersistCatalog {
		s.persist(ctx, "catalog", func(ctx context.Context) error { return s.repo.SaveProducts(ctx, s.products) })
	}

	s.log(ctx).InfoContext(ctx, "Product listed",
		slog.String("product_id", product.ID),
		slog.String("farmer_id", farmer.ID),
	)

	return product, farmer.Clone(), nil
}

// --- Cart ---

// AddToCart merges quantity into the product's cart line.
func (s *marketplaceStore) AddToCart(product entity.Product, quantity int) error {
	if quantity <= 0 {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("quantity must be positive"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(product, quantity)

	return nil
}

// SetCartQuantity overwrites a line's quantity; zero or less removes it.
func (s *marketplaceStore) SetCartQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.SetQuantity(productID, quantity)
}

// RemoveFromCart drops a cart line.
func (s *marketplaceStore) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(productID)
}

// ClearCart empties the cart.
func (s *marketplaceStore) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
}

// Cart returns the cart lines in insertion order.
func (s *marketplaceStore) Cart() []entity.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Items()
}

// CartSubtotal sums price times quantity over the cart.
func (s *marketplaceStore) CartSubtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Subtotal()
}

// CartSummary returns the cart with subtotal, fees and total.
func (s *marketplaceStore) CartSummary() usecase.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cartSummary()
}

func (s *marketplaceStore) cartSummary() usecase.CartSummary {
	subtotal := s.cart.Subtotal()
	fees := subtotal * s.options.FeeRate

	return usecase.CartSummary{
		Items:    s.cart.Items(),
		Subtotal: subtotal,
		Fees:     fees,
		Total:    subtotal + fees,
	}
}

// --- Orders ---

// PlaceOrder records an order for the given lines with the caller's total. The cart is not touched.
func (s *marketplaceStore) PlaceOrder(ctx context.Context, items []entity.CartItem, total float64) (*entity.Order, error) {
	s.mu.Lock()
	order, err := s.placeOrder(ctx, items, total)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publishOrder(ctx, order)

	return cloneOrder(order), nil
}

// Checkout places an order for the whole cart at subtotal plus fees, then empties the cart.
func (s *marketplaceStore) Checkout(ctx context.Context) (*entity.Order, error) {
	s.mu.Lock()
	summary := s.cartSummary()
	order, err := s.placeOrder(ctx, summary.Items, summary.Total)
	if err == nil {
		s.cart.Clear()
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publishOrder(ctx, order)

	return cloneOrder(order), nil
}

func (s *marketplaceStore) placeOrder(ctx context.Context, items []entity.CartItem, total float64) (*entity.Order, error) {
	marketman, err := s.requireRole(entity.RoleMarketman)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.WithStack(domainerrors.ErrEmptyCart)
	}
	if total < 0 {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("total must not be negative"))
	}

	orderItems := make([]entity.OrderItem, 0, len(items))
	for _, line := range items {
		if line.Quantity <= 0 {
			return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("quantity must be positive"))
		}
		orderItems = append(orderItems, entity.NewOrderItem(line))
	}

	order := entity.Order{
		ID:            "order_" + s.newID(),
		MarketmanID:   marketman.ID,
		MarketmanName: marketman.Name,
		Items:         orderItems,
		Total:         total,
		Date:          s.now().UTC(),
	}
	s.orders = append(s.orders, order)

	s.persist(ctx, "order ledger", func(ctx context.Context) error { return s.repo.SaveOrders(ctx, s.orders) })

	s.log(ctx).InfoContext(ctx, "Order placed",
		slog.String("order_id", order.ID),
		slog.Int("lines", len(order.Items)),
		slog.Float64("total", order.Total),
	)

	return &order, nil
}

func (s *marketplaceStore) publishOrder(ctx context.Context, order *entity.Order) {
	s.publish(ctx, &service.MarketEvent{
		Type:          service.MarketEventOrderPlaced,
		OrderID:       order.ID,
		MarketmanName: order.MarketmanName,
		FarmerIDs:     order.FarmerIDs(),
		Total:         order.Total,
	})
}

// Orders returns the whole ledger in placement order.
func (s *marketplaceStore) Orders() []entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]entity.Order, 0, len(s.orders))
	for i := range s.orders {
		orders = append(orders, *cloneOrder(&s.orders[i]))
	}

	return orders
}

// PurchaseHistory returns the signed-in marketman's orders, newest first.
func (s *marketplaceStore) PurchaseHistory() ([]entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marketman, err := s.requireRole(entity.RoleMarketman)
	if err != nil {
		return nil, err
	}

	orders := make([]entity.Order, 0)
	for i := range s.orders {
		if s.orders[i].MarketmanID == marketman.ID {
			orders = append(orders, *cloneOrder(&s.orders[i]))
		}
	}
	slices.SortStableFunc(orders, func(a, b entity.Order) int {
		return b.Date.Compare(a.Date)
	})

	return orders, nil
}

// SalesHistory returns the order lines sold by the signed-in farmer, newest first.
func (s *marketplaceStore) SalesHistory() ([]entity.SaleLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmer, err := s.requireRole(entity.RoleFarmer)
	if err != nil {
		return nil, err
	}

	sales := make([]entity.SaleLine, 0)
	for _, order := range s.orders {
		for _, item := range order.Items {
			if item.FarmerID != farmer.ID {
				continue
			}
			sales = append(sales, entity.SaleLine{
				OrderID:       order.ID,
				Date:          order.Date,
				MarketmanID:   order.MarketmanID,
				MarketmanName: order.MarketmanName,
				Item:          item,
			})
		}
	}
	slices.SortStableFunc(sales, func(a, b entity.SaleLine) int {
		return b.Date.Compare(a.Date)
	})

	return sales, nil
}

// --- Farmers and follows ---

// FarmerByID returns the farmer with id; other roles are not found.
func (s *marketplaceStore) FarmerByID(id string) (*entity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmer := s.findFarmer(id)
	if farmer == nil {
		return nil, false
	}

	return farmer.Clone(), true
}

// Farmers returns every farmer in directory order.
func (s *marketplaceStore) Farmers() []*entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	farmers := make([]*entity.User, 0)
	for _, u := range s.users {
		if u.IsFarmer() {
			farmers = append(farmers, u.Clone())
		}
	}

	return farmers
}

// FollowedFarmers resolves the signed-in marketman's follows, skipping unknown ids.
func (s *marketplaceStore) FollowedFarmers() ([]*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marketman, err := s.requireRole(entity.RoleMarketman)
	if err != nil {
		return nil, err
	}

	farmers := make([]*entity.User, 0, len(marketman.Marketman.Following))
	for _, id := range marketman.Marketman.Following {
		if farmer := s.findFarmer(id); farmer != nil {
			farmers = append(farmers, farmer.Clone())
		}
	}

	return farmers, nil
}

// FollowFarmer adds farmerID to the marketman's follows; following twice changes nothing.
func (s *marketplaceStore) FollowFarmer(ctx context.Context, farmerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marketman, err := s.requireRole(entity.RoleMarketman)
	if err != nil {
		return err
	}

	farmer := s.findFarmer(farmerID)
	if farmer == nil {
		return errors.WithStack(domainerrors.ErrFarmerNotFound)
	}
	if marketman.Follows(farmerID) {
		return nil
	}

	marketman.Marketman.Following = append(marketman.Marketman.Following, farmerID)
	farmer.Farmer.Followers++
	s.saveFollowState(ctx, marketman)

	return nil
}

// UnfollowFarmer removes farmerID from the marketman's follows; the count never drops below zero.
func (s *marketplaceStore) UnfollowFarmer(ctx context.Context, farmerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	marketman, err := s.requireRole(entity.RoleMarketman)
	if err != nil {
		return err
	}

	farmer := s.findFarmer(farmerID)
	following := marketman.Follows(farmerID)
	if !following {
		if farmer == nil {
			return errors.WithStack(domainerrors.ErrFarmerNotFound)
		}

		return nil
	}

	marketman.Marketman.Following = slices.DeleteFunc(marketman.Marketman.Following, func(id string) bool {
		return id == farmerID
	})
	if farmer != nil && farmer.Farmer.Followers > 0 {
		farmer.Farmer.Followers--
	}
	s.saveFollowState(ctx, marketman)

	return nil
}

// saveFollowState mirrors the marketman into the directory and persists both records.
func (s *marketplaceStore) saveFollowState(ctx context.Context, marketman *entity.User) {
	for i, u := range s.users {
		if u.ID == marketman.ID {
			s.users[i] = marketman.Clone()

			break
		}
	}

	s.persist(ctx, "current user", func(ctx context.Context) error { return s.repo.SaveCurrentUser(ctx, s.currentUser) })
	s.persist(ctx, "user directory", func(ctx context.Context) error { return s.repo.SaveUsers(ctx, s.users) })
}

// --- helpers, callers hold s.mu ---

func (s *marketplaceStore) requireRole(role entity.Role) (*entity.User, error) {
	if s.currentUser == nil {
		return nil, errors.WithStack(domainerrors.ErrNotSignedIn)
	}
	if s.currentUser.Role != role {
		return nil, errors.WithStack(domainerrors.ErrForbidden.WithDetails("requires the " + role.String() + " role"))
	}

	return s.currentUser, nil
}

func (s *marketplaceStore) findFarmer(id string) *entity.User {
	for _, u := range s.users {
		if u.ID == id && u.IsFarmer() {
			return u
		}
	}

	return nil
}

func (s *marketplaceStore) findByPhone(phone string) *entity.User {
	for _, u := range s.users {
		if u.Phone == phone {
			return u
		}
	}

	return nil
}

// persist mirrors one record; failures are logged and counted, never returned.
func (s *marketplaceStore) persist(ctx context.Context, record string, save func(context.Context) error) {
	if err := save(context.WithoutCancel(ctx)); err != nil {
		persistFailures.WithLabelValues(record).Inc()
		s.log(ctx).WarnContext(ctx, "Failed to persist record",
			slog.String("record", record),
			slog.Any("error", err),
		)
	}
}

// publish emits an event outside the store lock; failures are logged only.
func (s *marketplaceStore) publish(ctx context.Context, event *service.MarketEvent) {
	if s.publisher == nil {
		return
	}

	event.EventID = uuid.NewString()
	event.RequestID = deliverycontext.RequestIDFromContext(ctx)

	result := "ok"
	if err := s.publisher.PublishMarketEvent(ctx, event); err != nil {
		result = "error"
		s.log(ctx).WarnContext(ctx, "Failed to publish market event",
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
	}
	eventsPublished.WithLabelValues(string(event.Type), result).Inc()
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = slices.Clone(o.Items)

	return &c
}
