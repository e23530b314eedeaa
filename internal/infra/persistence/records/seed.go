package records

import "farmlink/internal/domain/entity"

const seedProfilePicture = "https://i.ibb.co/yYyVz3D/pexels-greta-hoffman-7722731.jpg"

// seedFarmers always lead the directory; their PINs are hashed once per process.
func seedFarmers() []userRecord {
	return []userRecord{
		{
			ID:             "farmer_123",
			Name:           "Suresh Kumar",
			Phone:          "9876543210",
			Address:        "123, Green Valley, Pollachi, Tamil Nadu",
			Location:       &entity.Location{Lat: 10.66, Lon: 77.01},
			Role:           entity.RoleFarmer.String(),
			PIN:            "1234",
			ProfilePicture: seedProfilePicture,
			Followers:      ptr(120),
		},
		{
			ID:             "farmer_456",
			Name:           "Anitha Devi",
			Phone:          "8765432109",
			Address:        "456, Farm Road, Ooty, Tamil Nadu",
			Location:       &entity.Location{Lat: 11.41, Lon: 76.69},
			Role:           entity.RoleFarmer.String(),
			PIN:            "5678",
			ProfilePicture: seedProfilePicture,
			Followers:      ptr(85),
		},
	}
}

// SeedProducts is the catalog used when no stored catalog can be read.
func SeedProducts() []entity.Product {
	return []entity.Product{
		{
			ID:          "prod_1",
			Name:        "Fresh Tomatoes",
			Description: "Organically grown, juicy tomatoes from the valley.",
			Image:       "https://picsum.photos/seed/tomatoes/600/400",
			ImageHint:   "fresh tomatoes",
			FarmerID:    "farmer_123",
			Price:       150,
			Rating:      4.5,
		},
		{
			ID:          "prod_2",
			Name:        "Crunchy Carrots",
			Description: "Sweet and crunchy carrots, perfect for salads and stews.",
			Image:       "https://picsum.photos/seed/carrots/600/400",
			ImageHint:   "fresh carrots",
			FarmerID:    "farmer_123",
			Price:       80,
			Rating:      4.8,
		},
		{
			ID:          "prod_3",
			Name:        "Earthy Potatoes",
			Description: "Versatile potatoes, great for roasting, frying, or mashing.",
			Image:       "https://picsum.photos/seed/potatoes/600/400",
			ImageHint:   "raw potatoes",
			FarmerID:    "farmer_456",
			Price:       50,
			Rating:      4.2,
		},
		{
			ID:          "prod_4",
			Name:        "Spicy Onions",
			Description: "Flavorful red onions to spice up any dish.",
			Image:       "https://picsum.photos/seed/onions/600/400",
			ImageHint:   "red onions",
			FarmerID:    "farmer_456",
			Price:       60,
			Rating:      4.0,
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
