package records

import (
	"slices"
	"time"

	"farmlink/internal/domain/entity"

	"github.com/pkg/errors"
)

// userRecord is the stored user shape; farmers carry followers, marketmen carry following.
type userRecord struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Phone          string           `json:"phone"`
	Address        string           `json:"address"`
	Location       *entity.Location `json:"location,omitempty"`
	Role           string           `json:"role"`
	PIN            string           `json:"pin"` // bcrypt hash
	ProfilePicture string           `json:"profilePicture,omitempty"`
	Following      []string         `json:"following,omitempty"`
	Followers      *int             `json:"followers,omitempty"`
}

type productRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	ImageHint   string  `json:"imageHint"`
	FarmerID    string  `json:"farmerId"`
	Rating      float64 `json:"rating"`
}

type orderRecord struct {
	ID            string            `json:"id"`
	MarketmanID   string            `json:"marketmanId"`
	MarketmanName string            `json:"marketmanName"`
	Items         []orderItemRecord `json:"items"`
	Total         float64           `json:"total"`
	Date          time.Time         `json:"date"`
}

type orderItemRecord struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	FarmerID     string  `json:"farmerId"`
}

func fromUserDomain(u *entity.User) userRecord {
	rec := userRecord{
		ID:             u.ID,
		Name:           u.Name,
		Phone:          u.Phone,
		Address:        u.Address,
		Location:       u.Location,
		Role:           u.Role.String(),
		PIN:            u.PINHash,
		ProfilePicture: u.ProfilePicture,
	}

	switch {
	case u.IsFarmer():
		rec.Followers = ptr(u.Farmer.Followers)
	case u.IsMarketman():
		rec.Following = slices.Clone(u.Marketman.Following)
		if rec.Following == nil {
			rec.Following = []string{}
		}
	}

	return rec
}

func toUserDomain(rec userRecord) (*entity.User, error) {
	if rec.ID == "" {
		return nil, errors.New("user record without id")
	}

	identity := entity.Identity{
		Name:           rec.Name,
		Phone:          rec.Phone,
		Address:        rec.Address,
		Location:       rec.Location,
		PINHash:        rec.PIN,
		ProfilePicture: rec.ProfilePicture,
	}

	switch entity.Role(rec.Role) {
	case entity.RoleFarmer:
		u := entity.NewFarmer(rec.ID, identity)
		if rec.Followers != nil {
			u.Farmer.Followers = max(*rec.Followers, 0)
		}

		return u, nil

	case entity.RoleMarketman:
		u := entity.NewMarketman(rec.ID, identity)
		for _, farmerID := range rec.Following {
			if farmerID != "" && !slices.Contains(u.Marketman.Following, farmerID) {
				u.Marketman.Following = append(u.Marketman.Following, farmerID)
			}
		}

		return u, nil

	default:
		return nil, errors.Errorf("user %s has unknown role %q", rec.ID, rec.Role)
	}
}

func fromProductDomain(p entity.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		ImageHint:   p.ImageHint,
		FarmerID:    p.FarmerID,
		Rating:      p.Rating,
	}
}

func toProductDomain(rec productRecord) entity.Product {
	return entity.Product{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Image:       rec.Image,
		ImageHint:   rec.ImageHint,
		FarmerID:    rec.FarmerID,
		Price:       rec.Price,
		Rating:      rec.Rating,
	}
}

func fromOrderDomain(o entity.Order) orderRecord {
	items := make([]orderItemRecord, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemRecord(item))
	}

	return orderRecord{
		ID:            o.ID,
		MarketmanID:   o.MarketmanID,
		MarketmanName: o.MarketmanName,
		Items:         items,
		Total:         o.Total,
		Date:          o.Date,
	}
}

func toOrderDomain(rec orderRecord) entity.Order {
	items := make([]entity.OrderItem, 0, len(rec.Items))
	for _, item := range rec.Items {
		items = append(items, entity.OrderItem(item))
	}

	return entity.Order{
		ID:            rec.ID,
		MarketmanID:   rec.MarketmanID,
		MarketmanName: rec.MarketmanName,
		Items:         items,
		Total:         rec.Total,
		Date:          rec.Date,
	}
}
