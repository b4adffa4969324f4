package models

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&Category{}, &Counter{}, &User{}, &Inventory{}, &Product{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestCategoryBeforeCreateAssignsIDAndAncestors(t *testing.T) {
	db := setupTestDB(t)

	cat := Category{Name: "Electronics", Slug: "electronics", Path: "/electronics", IsActive: true}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}
	if cat.ID == uuid.Nil {
		t.Error("expected ID to be generated")
	}
	if cat.Ancestors == nil {
		t.Error("expected ancestors to default to an empty list")
	}
}

func TestCategoryAncestorsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	a, b := uuid.New(), uuid.New()
	cat := Category{
		Name:      "Toasters",
		Slug:      "toasters",
		Path:      "/a/b/toasters",
		Level:     2,
		Ancestors: datatypes.JSONSlice[uuid.UUID]{a, b},
		IsActive:  true,
	}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}

	var loaded Category
	if err := db.First(&loaded, "id = ?", cat.ID).Error; err != nil {
		t.Fatal(err)
	}
	if len(loaded.Ancestors) != 2 || loaded.Ancestors[0] != a || loaded.Ancestors[1] != b {
		t.Errorf("expected ancestors [%s %s], got %v", a, b, loaded.Ancestors)
	}
	if !loaded.HasAncestor(b) || loaded.HasAncestor(cat.ID) {
		t.Error("HasAncestor returned the wrong answer")
	}
}

func TestCategoryIsRoot(t *testing.T) {
	parent := uuid.New()
	if !(&Category{}).IsRoot() {
		t.Error("node without parent should be root")
	}
	if (&Category{ParentID: &parent}).IsRoot() {
		t.Error("node with parent should not be root")
	}
}

func TestUserBeforeCreate(t *testing.T) {
	db := setupTestDB(t)

	user := User{HumanID: "A00001", Email: "a@test.com", Password: "x", Name: "A", Role: RoleAdmin, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID == uuid.Nil {
		t.Error("expected ID to be generated")
	}
}

func TestHumanIDPrefix(t *testing.T) {
	cases := map[string]string{RoleAdmin: "A", RoleEmployee: "E", "other": "U"}
	for role, want := range cases {
		if got := HumanIDPrefix(role); got != want {
			t.Errorf("HumanIDPrefix(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestInventoryAvailable(t *testing.T) {
	inv := Inventory{Quantity: 10, ReservedQuantity: 3}
	if inv.Available() != 7 {
		t.Errorf("expected 7 available, got %d", inv.Available())
	}
}

func TestProductBeforeCreateDefaultsImages(t *testing.T) {
	db := setupTestDB(t)

	p := Product{InventoryID: uuid.New(), Title: "Toaster", Slug: "toaster", Price: 10, CategoryID: uuid.New()}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}
	if p.ID == uuid.Nil || p.Images == nil {
		t.Error("expected ID and empty image list to be set")
	}
}
