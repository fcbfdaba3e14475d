// Command seed fills an empty database with the default catalog and team.
package main

import (
	"instaclean-backend/config"
	"instaclean-backend/models"
	"instaclean-backend/utils"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var defaultServices = []models.Service{
	{
		Name:        "Standard Cleaning",
		Description: "Our regular cleaning service includes dusting, vacuuming, mopping, bathroom cleaning, and kitchen cleaning. Perfect for weekly or bi-weekly maintenance.",
		BasePrice:   99,
		Duration:    120,
	},
	{
		Name:        "Deep Cleaning",
		Description: "A thorough top-to-bottom clean including everything in standard cleaning plus inside appliances, baseboards, window sills, and detailed scrubbing.",
		BasePrice:   199,
		Duration:    240,
	},
	{
		Name:        "Move In/Out Cleaning",
		Description: "Comprehensive cleaning for empty properties. Includes everything in deep cleaning plus inside cabinets, closets, and garage cleaning.",
		BasePrice:   299,
		Duration:    360,
	},
	{
		Name:        "Office Cleaning",
		Description: "Professional cleaning for offices and commercial spaces. Includes desk cleaning, trash removal, restroom sanitization, and floor care.",
		BasePrice:   149,
		Duration:    180,
	},
	{
		Name:        "Post-Construction Cleaning",
		Description: "Specialized cleaning after renovations or construction. Removes dust, debris, and construction materials to make your space move-in ready.",
		BasePrice:   399,
		Duration:    480,
	},
	{
		Name:        "Event Cleaning",
		Description: "Pre and post-event cleaning services for parties, weddings, corporate events, and gatherings. Available on short notice.",
		BasePrice:   249,
		Duration:    240,
	},
}

var defaultPropertyTypes = []models.PropertyType{
	{Name: "House", Description: "Single-family home", Icon: "🏠"},
	{Name: "Apartment/Condo", Description: "Apartment or condominium unit", Icon: "🏢"},
	{Name: "Office", Description: "Commercial office space", Icon: "🏛️"},
	{Name: "Church", Description: "Church or place of worship", Icon: "⛪"},
	{Name: "Restaurant", Description: "Restaurant or food service establishment", Icon: "🍽️"},
	{Name: "Event Venue", Description: "Event space or banquet hall", Icon: "🎪"},
	{Name: "Retail Store", Description: "Retail or shop space", Icon: "🛒"},
}

var defaultTeam = []models.User{
	{Name: "Admin User", Email: "admin@instacleaning.com", Password: "admin123", Role: models.RoleAdmin, Phone: "(555) 000-0000"},
	{Name: "Maria Rodriguez", Email: "maria@instacleaning.com", Password: "staff123", Role: models.RoleStaff, Phone: "(555) 111-1111"},
	{Name: "James Wilson", Email: "james@instacleaning.com", Password: "staff123", Role: models.RoleStaff, Phone: "(555) 222-2222"},
}

func main() {
	utils.InitLogger("instaclean-seed")
	if err := godotenv.Load(); err != nil {
		utils.Logger.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}
	db, err := config.ConnectDB(cfg)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Database connection failed")
	}
	if err := models.AutoMigrate(db); err != nil {
		utils.Logger.WithError(err).Fatal("Migration failed")
	}

	if err := db.Transaction(seed); err != nil {
		utils.Logger.WithError(err).Fatal("Seeding failed")
	}
	utils.Logger.Info("Database seed completed")
}

// seed only inserts rows that are missing, matched by name or email.
func seed(tx *gorm.DB) error {
	for _, service := range defaultServices {
		service.PriceUnit = "flat rate"
		service.IsActive = true
		if err := tx.Where(models.Service{Name: service.Name}).FirstOrCreate(&service).Error; err != nil {
			return err
		}
	}
	utils.Logger.Infof("Seeded %d services", len(defaultServices))

	for _, propertyType := range defaultPropertyTypes {
		propertyType.IsActive = true
		if err := tx.Where(models.PropertyType{Name: propertyType.Name}).FirstOrCreate(&propertyType).Error; err != nil {
			return err
		}
	}
	utils.Logger.Infof("Seeded %d property types", len(defaultPropertyTypes))

	for _, user := range defaultTeam {
		if err := tx.Where(models.User{Email: user.Email}).FirstOrCreate(&user).Error; err != nil {
			return err
		}
		utils.Logger.Infof("Team member ready: %s (%s)", user.Email, user.Role)
	}
	return nil
}
