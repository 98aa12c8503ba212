package shop

import "github.com/shopspring/decimal"

const (
	AdminID       = "admin-master"
	AdminName     = "Master Admin"
	AdminEmail    = "admin@timestore.com"
	AdminPassword = "admin"
)

// MasterAdmin is the bootstrap account that must always exist.
func MasterAdmin(password string) User {
	return User{
		ID:       AdminID,
		Name:     AdminName,
		Email:    AdminEmail,
		Password: password,
		IsAdmin:  true,
		Role:     RoleAdmin,
		Status:   StatusApproved,
	}
}

// DefaultCatalog is the seed used when no product collection exists yet.
func DefaultCatalog() []Product {
	return []Product{
		{
			ID: "1", Name: "Oyster Perpetual Elite", Brand: "Rolex-Style", Price: decimal.NewFromInt(14500), Category: CategoryLuxury,
			Image:       "https://images.unsplash.com/photo-1523170335258-f5ed11844a49?q=80&w=1000&auto=format&fit=crop",
			Description: "La definición de prestigio. Forjado en oro de 18k con una esfera verde oliva que captura la luz de forma única.",
			Specs:       []string{"Automático 3235", "Cristal Zafiro", "Resistente 100m", "Oro 18k"},
			IsFeatured:  true, Stock: DefaultStock,
		},
		{
			ID: "2", Name: "SpeedMaster Dark Side", Brand: "Omega-Style", Price: decimal.NewFromInt(9200), Category: CategorySport,
			Image:       "https://images.unsplash.com/photo-1623998021450-85c29c644e0d?q=80&w=1000&auto=format&fit=crop",
			Description: "Nacido para la velocidad. Cerámica negra y un cronógrafo de precisión certificado por METAS.",
			Specs:       []string{"Cronógrafo Co-Axial", "Cerámica Negra", "Tacómetro", "Antimagnético"},
			IsFeatured:  true, Stock: DefaultStock,
		},
		{
			ID: "3", Name: "Grand Complication", Brand: "Patek-Style", Price: decimal.NewFromInt(45000), Category: CategoryLuxury,
			Image:       "https://images.unsplash.com/photo-1509048191080-d2984bad6ae5?q=80&w=1000&auto=format&fit=crop",
			Description: "Una obra maestra de la ingeniería mecánica. Calendario perpetuo y fase lunar en una caja de platino.",
			Specs:       []string{"Cuerda Manual", "Fase Lunar", "Calendario Perpetuo", "Correa Cocodrilo"},
			IsFeatured:  true, Stock: DefaultStock,
		},
		{
			ID: "4", Name: "Series 9 Ultra", Brand: "Tech-Style", Price: decimal.NewFromInt(899), Category: CategorySmart,
			Image:       "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?q=80&w=1000&auto=format&fit=crop",
			Description: "El compañero definitivo para la aventura y la salud. Caja de titanio aeroespacial.",
			Specs:       []string{"Pantalla Retina", "GPS Doble Frecuencia", "Sensor Oxígeno", "Sumergible 100m"},
			Stock:       DefaultStock,
		},
		{
			ID: "5", Name: "Prospex Diver", Brand: "Seiko-Style", Price: decimal.NewFromInt(1200), Category: CategorySport,
			Image:       "https://images.unsplash.com/photo-1539874754764-5a96559165b0?q=80&w=1000&auto=format&fit=crop",
			Description: "Construido para resistir las presiones del mar profundo. Un clásico reinventado.",
			Specs:       []string{"Automático", "Bisel Giratorio", "Luminiscencia LumiBrite", "Acero Inoxidable"},
			IsFeatured:  true, Stock: DefaultStock,
		},
		{
			ID: "6", Name: "Tank Solo Gold", Brand: "Cartier-Style", Price: decimal.NewFromInt(6400), Category: CategoryClassic,
			Image:       "https://images.unsplash.com/photo-1524592094714-0f0654e20314?q=80&w=1000&auto=format&fit=crop",
			Description: "Líneas puras y diseño geométrico. Un icono del diseño art déco que nunca pasa de moda.",
			Specs:       []string{"Cuarzo Alta Precisión", "Oro Rosa", "Cabujón Zafiro", "Diseño Rectangular"},
			Stock:       DefaultStock,
		},
		{
			ID: "7", Name: "Pilot Chrono", Brand: "IWC-Style", Price: decimal.NewFromInt(5800), Category: CategoryClassic,
			Image:       "https://images.unsplash.com/photo-1522312346375-d1a52e2b99b3?q=80&w=1000&auto=format&fit=crop",
			Description: "Legibilidad absoluta y precisión militar. El reloj de los aviadores por excelencia.",
			Specs:       []string{"Automático", "Día y Fecha", "Caja Hierro Dulce", "Cristal Antirreflejos"},
			Stock:       DefaultStock,
		},
		{
			ID: "8", Name: "Royal Oak Offshore", Brand: "AP-Style", Price: decimal.NewFromInt(32000), Category: CategoryLuxury,
			Image:       "https://images.unsplash.com/photo-1547996663-0b5b0e53f331?q=80&w=1000&auto=format&fit=crop",
			Description: "Audaz, potente y extremadamente deportivo. El reloj que rompió las reglas.",
			Specs:       []string{"Cronógrafo", "Tornillos Hexagonales", "Brazalete Integrado", "Acero 904L"},
			IsFeatured:  true, Stock: DefaultStock,
		},
	}
}
