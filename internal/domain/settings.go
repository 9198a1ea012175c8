package domain

// ServiceItem is an admin-editable catalog entry. Orders reference it by ID
// only; the price is baked into each order item's subtotal at creation.
type ServiceItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Unit        string `json:"unit"` // "kg" or "pcs"
	Description string `json:"description"`
}

// PaymentConfig selects the payment gateway for new orders. It does not
// affect orders that already exist.
type PaymentConfig struct {
	IsActive     bool   `json:"isActive"`
	Provider     string `json:"provider"` // "Tripay" or "Duitku"
	MerchantCode string `json:"merchantCode"`
	APIKey       string `json:"apiKey"`
	PrivateKey   string `json:"privateKey"`
}

type HeroContent struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	BannerURL string `json:"bannerUrl"`
}

type SocialLinks struct {
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	WhatsApp  string `json:"whatsapp"`
}

type ContactInfo struct {
	Email   string      `json:"email"`
	Phone   string      `json:"phone"`
	Address string      `json:"address"`
	Social  SocialLinks `json:"social"`
}

// SiteSettings is the global singleton configuration edited by admins.
type SiteSettings struct {
	Hero     HeroContent   `json:"hero"`
	Services []ServiceItem `json:"services"`
	Payment  PaymentConfig `json:"payment"`
	Contact  ContactInfo   `json:"contact"`
}

// ServiceByID looks up a catalog entry. Historical orders may reference
// services that were since removed; callers must handle the miss.
func (s SiteSettings) ServiceByID(id string) (ServiceItem, bool) {
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return ServiceItem{}, false
}

// DefaultSiteSettings seeds a fresh installation.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		Hero: HeroContent{
			Title:     "Cucian Bersih, Hidup Makin Praktis",
			Subtitle:  "Solusi laundry profesional dengan layanan antar-jemput gratis. Kami merawat pakaian Anda seperti milik sendiri.",
			BannerURL: "https://images.unsplash.com/photo-1545173168-9f1947eebb7f?auto=format&fit=crop&q=80&w=1200",
		},
		Services: []ServiceItem{
			{ID: "1", Name: "Cuci Kering Lipat", Price: 7000, Unit: "kg", Description: "Layanan standar cuci bersih dan lipat rapi."},
			{ID: "2", Name: "Cuci Setrika", Price: 10000, Unit: "kg", Description: "Cucian bersih, wangi, dan disetrika licin."},
			{ID: "3", Name: "Express 6 Jam", Price: 15000, Unit: "kg", Description: "Layanan super cepat untuk kebutuhan mendesak."},
			{ID: "4", Name: "Bed Cover / Selimut", Price: 25000, Unit: "pcs", Description: "Pembersihan mendalam untuk perlengkapan tidur."},
		},
		Payment: PaymentConfig{
			IsActive: false,
			Provider: "Tripay",
		},
		Contact: ContactInfo{
			Email:   "halo@laundrymate.id",
			Phone:   "+62 812 3456 7890",
			Address: "Jl. Bersih Sejahtera No. 123, Jakarta Selatan",
			Social: SocialLinks{
				Instagram: "laundrymate_id",
				Facebook:  "LaundryMatePro",
				WhatsApp:  "6281234567890",
			},
		},
	}
}
