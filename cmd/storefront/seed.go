package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	catalogapp "github.com/wyfcoding/smarthome/internal/catalog/application"
	catalog "github.com/wyfcoding/smarthome/internal/catalog/domain"
	userapp "github.com/wyfcoding/smarthome/internal/user/application"
	user "github.com/wyfcoding/smarthome/internal/user/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/logger"
)

// catalogSeeder 初始化目录所需的服务能力，CatalogService 即满足
type catalogSeeder interface {
	ListCategories(ctx context.Context) ([]*catalog.Category, error)
	CreateCategory(ctx context.Context, name string) (*catalog.Category, error)
	CreateProduct(ctx context.Context, cmd catalogapp.ProductCommand) (*catalog.Product, error)
	ListStoreLocations(ctx context.Context) ([]*catalog.StoreLocation, error)
	CreateStoreLocation(ctx context.Context, cmd catalogapp.StoreLocationCommand) (*catalog.StoreLocation, error)
}

// userSeeder UserService 即满足
type userSeeder interface {
	Register(ctx context.Context, cmd userapp.RegisterCommand) (*user.User, error)
}

const (
	seedPassword = "password123"
	seedStock    = 100
)

type seedProduct struct {
	name        string
	description string
	price       string
	accessories []int
}

var (
	seedAccessories = []catalog.Accessory{
		{Name: "Battery Pack", Price: decimal.RequireFromString("19.99")},
		{Name: "Wall Mount", Price: decimal.RequireFromString("29.99")},
		{Name: "Smart Plug", Price: decimal.RequireFromString("14.99")},
	}

	// 分类名到商品，顺序即创建顺序
	seedCatalog = []struct {
		category string
		products []seedProduct
	}{
		{"Smart Doorbells", []seedProduct{
			{"Ring Video Doorbell", "Smart doorbell with HD video and motion detection.", "199.99", []int{0, 1}},
			{"Nest Hello", "Wired doorbell with HD video and person alerts.", "229.99", []int{0, 1, 2}},
			{"Arlo Video Doorbell", "Smart doorbell with wide-angle view and HDR.", "149.99", []int{0, 1, 2}},
			{"SimpliSafe Doorbell", "Easy-to-install doorbell with video and audio.", "169.99", []int{0}},
			{"Eufy Security Doorbell", "Battery-powered video doorbell with 2K resolution.", "179.99", []int{1, 2}},
		}},
		{"Smart Doorlocks", []seedProduct{
			{"August Smart Lock", "Keyless entry and remote control for your door.", "229.99", []int{0, 1}},
			{"Yale Assure Lock", "Touchscreen smart lock with keyless entry.", "199.99", []int{0, 1, 2}},
			{"Schlage Encode", "Smart lock with built-in WiFi.", "249.99", []int{0, 1, 2}},
			{"Ultraloq U-Bolt Pro", "Smart lock with fingerprint ID.", "159.99", []int{0}},
			{"Kwikset SmartCode", "Deadbolt smart lock with customizable entry codes.", "179.99", []int{1, 2}},
		}},
		{"Smart Speakers", []seedProduct{
			{"Amazon Echo", "Voice-controlled smart speaker with Alexa.", "99.99", []int{0, 1}},
			{"Google Nest Audio", "Smart speaker with Google Assistant.", "89.99", []int{0, 1, 2}},
			{"Apple HomePod Mini", "Smart speaker with Siri integration.", "99.99", []int{0, 1, 2}},
			{"Sonos One", "Smart speaker with voice control and excellent sound.", "199.99", []int{0}},
			{"Bose Home Speaker 500", "Smart speaker with Alexa and Google Assistant.", "299.99", []int{1, 2}},
		}},
		{"Smart Lightings", []seedProduct{
			{"Philips Hue Bulb", "Smart light bulb with app control.", "49.99", []int{0, 1}},
			{"LIFX Smart Bulb", "Color-changing smart bulb.", "59.99", []int{0, 1, 2}},
			{"Nanoleaf Light Panels", "Customizable LED light panels.", "199.99", []int{0, 1, 2}},
			{"Wyze Bulb", "Affordable smart bulb with voice control.", "19.99", []int{0}},
			{"TP-Link Kasa Bulb", "Smart bulb with adjustable brightness.", "29.99", []int{1, 2}},
		}},
		{"Smart Thermostats", []seedProduct{
			{"Nest Learning Thermostat", "Smart thermostat that learns your preferences.", "249.99", []int{0, 1}},
			{"Ecobee SmartThermostat", "Thermostat with voice control and remote sensors.", "219.99", []int{0, 1, 2}},
			{"Honeywell T9", "Smart thermostat with room sensors.", "199.99", []int{0, 1, 2}},
			{"Emerson Sensi", "Smart thermostat with mobile app control.", "129.99", []int{0}},
			{"Lux Kono Smart Thermostat", "Stylish thermostat with smart features.", "139.99", []int{1, 2}},
		}},
	}

	seedStreets = []struct{ street, zip string }{
		{"123 Main St", "60601"},
		{"456 Oak Ave", "60602"},
		{"789 Pine Rd", "60603"},
		{"321 Elm St", "60604"},
		{"654 Maple Dr", "60605"},
		{"987 Cedar Ln", "60606"},
		{"147 Birch Blvd", "60607"},
		{"258 Spruce St", "60608"},
		{"369 Willow Way", "60609"},
		{"159 Oakwood Ave", "60610"},
	}

	seedUsers = []struct {
		name, email, street, zip string
		role                     user.Role
	}{
		{"John Doe", "john@example.com", "123 Main St", "60601", user.RoleCustomer},
		{"Jane Smith", "jane@example.com", "456 Oak Ave", "60602", user.RoleCustomer},
		{"Bob Johnson", "bob@example.com", "789 Pine Rd", "60603", user.RoleCustomer},
		{"Alice Brown", "alice@example.com", "321 Elm St", "60604", user.RoleCustomer},
		{"Charlie Davis", "charlie@example.com", "654 Maple Dr", "60605", user.RoleCustomer},
		{"David Wilson", "david@example.com", "987 Cedar Ln", "60606", user.RoleCustomer},
		{"Ella Thompson", "ella@example.com", "147 Birch Blvd", "60607", user.RoleCustomer},
		{"Frank Garcia", "frank@example.com", "258 Spruce St", "60608", user.RoleCustomer},
		{"Grace Lee", "grace@example.com", "369 Willow Way", "60609", user.RoleCustomer},
		{"Hank Martinez", "hank@example.com", "159 Oakwood Ave", "60610", user.RoleCustomer},
		{"Store Manager", "manager@example.com", "233 S Wacker Dr", "60606", user.RoleManager},
		{"Sales Associate", "salesman@example.com", "233 S Wacker Dr", "60606", user.RoleSalesman},
	}
)

// seed 在目录为空时写入演示数据，重复执行不会产生重复记录
func seed(ctx context.Context, cat catalogSeeder, users userSeeder) error {
	defer logger.LogDuration(ctx, "Seed data")()

	if err := seedCategoriesAndProducts(ctx, cat); err != nil {
		return err
	}
	if err := seedStoreLocations(ctx, cat); err != nil {
		return err
	}
	return seedUsersByRegistration(ctx, users)
}

func seedCategoriesAndProducts(ctx context.Context, cat catalogSeeder) error {
	existing, err := cat.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info(ctx, "Catalog already seeded", "categories", len(existing))
		return nil
	}

	created := 0
	for _, group := range seedCatalog {
		category, err := cat.CreateCategory(ctx, group.category)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", group.category, err)
		}
		for _, p := range group.products {
			accessories := make([]catalog.Accessory, 0, len(p.accessories))
			for _, i := range p.accessories {
				accessories = append(accessories, seedAccessories[i])
			}
			_, err := cat.CreateProduct(ctx, catalogapp.ProductCommand{
				Name:           p.name,
				Description:    p.description,
				Price:          decimal.RequireFromString(p.price),
				CategoryID:     category.ID,
				Accessories:    accessories,
				AvailableItems: seedStock,
			})
			if err != nil {
				return fmt.Errorf("seed product %q: %w", p.name, err)
			}
			created++
		}
	}
	logger.Info(ctx, "Catalog seeded", "categories", len(seedCatalog), "products", created)
	return nil
}

func seedStoreLocations(ctx context.Context, cat catalogSeeder) error {
	existing, err := cat.ListStoreLocations(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, s := range seedStreets {
		_, err := cat.CreateStoreLocation(ctx, catalogapp.StoreLocationCommand{
			Street:  s.street,
			City:    "Chicago",
			State:   "IL",
			ZipCode: s.zip,
		})
		if err != nil {
			return fmt.Errorf("seed store location %q: %w", s.street, err)
		}
	}
	logger.Info(ctx, "Store locations seeded", "count", len(seedStreets))
	return nil
}

// seedUsersByRegistration 走注册流程以保证密码按 bcrypt 存储，邮箱已存在视为已初始化
func seedUsersByRegistration(ctx context.Context, users userSeeder) error {
	created := 0
	for _, u := range seedUsers {
		_, err := users.Register(ctx, userapp.RegisterCommand{
			Name:     u.name,
			Email:    u.email,
			Password: seedPassword,
			Street:   u.street,
			City:     "Chicago",
			State:    "IL",
			ZipCode:  u.zip,
			Role:     string(u.role),
		})
		if apperror.Is(err, apperror.KindConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.email, err)
		}
		created++
	}
	if created > 0 {
		logger.Info(ctx, "Users seeded", "count", created)
	}
	return nil
}
