package main

import (
	"log"

	"authz/internal/config"
	"authz/internal/database"
	"authz/internal/model"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds the default roles, resources, permission matrix and demo users.
// Idempotent: existing rows are left untouched.
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	log.Println("Seeding roles...")
	roles := seedRoles(db)

	log.Println("Seeding resources...")
	resources := seedResources(db)

	log.Println("Seeding permission rules...")
	seedPermissions(db, roles, resources)

	log.Println("Seeding demo users...")
	seedUsers(db, roles)

	log.Println("Done.")
}

func seedRoles(db *gorm.DB) map[string]model.Role {
	defs := []model.Role{
		{Name: "admin", Description: "Administrator with full access"},
		{Name: "manager", Description: "Manager with extended access"},
		{Name: "user", Description: "Regular user"},
	}

	roles := make(map[string]model.Role, len(defs))
	for _, def := range defs {
		var role model.Role
		if err := db.Where(model.Role{Name: def.Name}).Attrs(def).FirstOrCreate(&role).Error; err != nil {
			log.Fatalf("seed role %s: %v", def.Name, err)
		}
		roles[role.Name] = role
	}
	return roles
}

func seedResources(db *gorm.DB) map[string]model.Resource {
	defs := []model.Resource{
		{Code: model.ResourceProducts, Name: "Products", Description: "Product catalog"},
		{Code: model.ResourceOrders, Name: "Orders", Description: "Customer orders"},
		{Code: model.ResourceReports, Name: "Reports", Description: "System reports"},
	}

	resources := make(map[string]model.Resource, len(defs))
	for _, def := range defs {
		var res model.Resource
		if err := db.Where(model.Resource{Code: def.Code}).Attrs(def).FirstOrCreate(&res).Error; err != nil {
			log.Fatalf("seed resource %s: %v", def.Code, err)
		}
		resources[res.Code] = res
	}
	return resources
}

func seedPermissions(db *gorm.DB, roles map[string]model.Role, resources map[string]model.Resource) {
	ensure := func(role model.Role, res model.Resource, grants model.Permission) {
		grants.RoleID = role.ID
		grants.ResourceID = res.ID
		var perm model.Permission
		err := db.Where(model.Permission{RoleID: role.ID, ResourceID: res.ID}).
			Attrs(grants).FirstOrCreate(&perm).Error
		if err != nil {
			log.Fatalf("seed rule %s/%s: %v", role.Name, res.Code, err)
		}
	}

	// Admin: full access to everything
	for _, res := range resources {
		ensure(roles["admin"], res, model.Permission{
			CanRead: true, CanReadAll: true,
			CanCreate: true,
			CanUpdate: true, CanUpdateAll: true,
			CanDelete: true, CanDeleteAll: true,
		})
	}

	// Manager: read everything, create, update own
	for _, res := range resources {
		ensure(roles["manager"], res, model.Permission{
			CanRead: true, CanReadAll: true,
			CanCreate: true,
			CanUpdate: true,
		})
	}

	// User: read the catalog, full control of own orders, no reports
	ensure(roles["user"], resources[model.ResourceProducts], model.Permission{
		CanRead: true, CanReadAll: true,
	})
	ensure(roles["user"], resources[model.ResourceOrders], model.Permission{
		CanRead:   true,
		CanCreate: true,
		CanUpdate: true,
		CanDelete: true,
	})
}

func seedUsers(db *gorm.DB, roles map[string]model.Role) {
	defs := []struct {
		email     string
		password  string
		firstName string
		lastName  string
		role      string
	}{
		{"admin@test.com", "admin123", "Alice", "Admin", "admin"},
		{"manager@test.com", "manager123", "Mark", "Manager", "manager"},
		{"user@test.com", "user123", "Uma", "User", "user"},
	}

	for _, def := range defs {
		var count int64
		if err := db.Model(&model.User{}).Where("email = ?", def.email).Count(&count).Error; err != nil {
			log.Fatalf("seed user %s: %v", def.email, err)
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(def.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password for %s: %v", def.email, err)
		}

		user := model.User{
			Email:        def.email,
			PasswordHash: string(hash),
			FirstName:    def.firstName,
			LastName:     def.lastName,
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("seed user %s: %v", def.email, err)
		}

		role := roles[def.role]
		assignment := model.UserRole{UserID: user.ID, RoleID: role.ID}
		if err := db.Create(&assignment).Error; err != nil {
			log.Fatalf("assign role %s to %s: %v", def.role, def.email, err)
		}
		log.Printf("  Created: %s (%s)", def.email, def.role)
	}
}
