package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ecofinds/marketplace/internal/core/domain"
	"github.com/ecofinds/marketplace/internal/port"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		name            VARCHAR(64) PRIMARY KEY,
		version         BIGINT NOT NULL,
		current_user_id VARCHAR(64) NOT NULL DEFAULT '',
		updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		snapshot       VARCHAR(64) NOT NULL,
		position       INT NOT NULL,
		id             VARCHAR(64) NOT NULL,
		username       VARCHAR(255) NOT NULL,
		email          VARCHAR(255) NOT NULL,
		password_hash  VARCHAR(255) NOT NULL,
		address        MEDIUMTEXT NOT NULL,
		age            INT NULL,
		contact_number VARCHAR(32) NOT NULL,
		image          LONGTEXT NOT NULL,
		PRIMARY KEY (snapshot, id)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		snapshot            VARCHAR(64) NOT NULL,
		position            INT NOT NULL,
		id                  VARCHAR(64) NOT NULL,
		seller_id           VARCHAR(64) NOT NULL,
		title               VARCHAR(255) NOT NULL,
		description         MEDIUMTEXT NOT NULL,
		price               DECIMAL(20,4) NOT NULL,
		category            VARCHAR(64) NOT NULL,
		image_urls          LONGTEXT NOT NULL,
		quantity            INT NOT NULL,
		item_condition      VARCHAR(64) NOT NULL,
		brand               VARCHAR(255) NOT NULL,
		model               VARCHAR(255) NOT NULL,
		dimensions          VARCHAR(255) NOT NULL,
		weight              VARCHAR(64) NOT NULL,
		material            VARCHAR(255) NOT NULL,
		color               VARCHAR(64) NOT NULL,
		year_of_manufacture INT NULL,
		original_packaging  BOOLEAN NOT NULL,
		manual_included     BOOLEAN NOT NULL,
		working_condition   MEDIUMTEXT NOT NULL,
		PRIMARY KEY (snapshot, id)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		snapshot   VARCHAR(64) NOT NULL,
		position   INT NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		quantity   INT NOT NULL,
		PRIMARY KEY (snapshot, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		snapshot VARCHAR(64) NOT NULL,
		position INT NOT NULL,
		id       VARCHAR(64) NOT NULL,
		user_id  VARCHAR(64) NOT NULL,
		placed_at DATETIME(6) NOT NULL,
		PRIMARY KEY (snapshot, id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		snapshot   VARCHAR(64) NOT NULL,
		order_id   VARCHAR(64) NOT NULL,
		position   INT NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		quantity   INT NOT NULL,
		PRIMARY KEY (snapshot, order_id, position)
	)`,
}

var childTables = []string{"users", "products", "cart_items", "orders", "order_items"}

// MySQLAdapter keeps a snapshot in normalized tables, one row set per name.
type MySQLAdapter struct {
	db   *sql.DB
	name string
}

func NewMySQLAdapter(db *sql.DB, name string) *MySQLAdapter {
	return &MySQLAdapter{db: db, name: name}
}

// Migrate creates the tables if they do not exist.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Save replaces the stored rows with snap in one transaction. The header row
// is locked first so concurrent writers serialize on it.
func (m *MySQLAdapter) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM snapshots WHERE name = ? FOR UPDATE`, m.name,
	).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("lock snapshot: %w", err)
	case current > snap.Version:
		return port.ErrStaleSnapshot
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (name, version, current_user_id) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE version = VALUES(version), current_user_id = VALUES(current_user_id)`,
		m.name, snap.Version, snap.CurrentUserID,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE snapshot = ?`, m.name); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := m.insertUsers(ctx, tx, snap.Users); err != nil {
		return err
	}
	if err := m.insertProducts(ctx, tx, snap.Products); err != nil {
		return err
	}
	if err := m.insertCart(ctx, tx, snap.Cart); err != nil {
		return err
	}
	if err := m.insertOrders(ctx, tx, snap.Orders); err != nil {
		return err
	}

	return tx.Commit()
}

func (m *MySQLAdapter) insertUsers(ctx context.Context, tx *sql.Tx, users []domain.User) error {
	for i, u := range users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (snapshot, position, id, username, email, password_hash, address, age, contact_number, image)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.name, i, u.ID, u.Username, u.Email, u.PasswordHash, u.Address, u.Age, u.ContactNumber, u.Image,
		)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
	}
	return nil
}

func (m *MySQLAdapter) insertProducts(ctx context.Context, tx *sql.Tx, products []domain.Product) error {
	for i, p := range products {
		images, err := json.Marshal(p.ImageURLs)
		if err != nil {
			return fmt.Errorf("encode images of %s: %w", p.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (snapshot, position, id, seller_id, title, description, price, category,
				image_urls, quantity, item_condition, brand, model, dimensions, weight, material, color,
				year_of_manufacture, original_packaging, manual_included, working_condition)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.name, i, p.ID, p.SellerID, p.Title, p.Description, p.Price, string(p.Category),
			string(images), p.Quantity, p.Condition, p.Brand, p.Model, p.Dimensions, p.Weight, p.Material, p.Color,
			p.YearOfManufacture, p.OriginalPackaging, p.ManualIncluded, p.WorkingCondition,
		)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}
	return nil
}

func (m *MySQLAdapter) insertCart(ctx context.Context, tx *sql.Tx, items []domain.LineItem) error {
	for i, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (snapshot, position, product_id, quantity) VALUES (?, ?, ?, ?)`,
			m.name, i, it.ProductID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert cart item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func (m *MySQLAdapter) insertOrders(ctx context.Context, tx *sql.Tx, orders []domain.Order) error {
	for i, o := range orders {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO orders (snapshot, position, id, user_id, placed_at) VALUES (?, ?, ?, ?, ?)`,
			m.name, i, o.ID, o.UserID, o.Date.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}

		for j, it := range o.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (snapshot, order_id, position, product_id, quantity)
				VALUES (?, ?, ?, ?, ?)`,
				m.name, o.ID, j, it.ProductID, it.Quantity,
			)
			if err != nil {
				return fmt.Errorf("insert order item %s/%s: %w", o.ID, it.ProductID, err)
			}
		}
	}
	return nil
}

func (m *MySQLAdapter) Load(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.db.QueryRowContext(ctx,
		`SELECT version, current_user_id FROM snapshots WHERE name = ?`, m.name,
	).Scan(&snap.Version, &snap.CurrentUserID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	if snap.Users, err = m.loadUsers(ctx); err != nil {
		return nil, err
	}
	if snap.Products, err = m.loadProducts(ctx); err != nil {
		return nil, err
	}
	if snap.Cart, err = m.loadCart(ctx); err != nil {
		return nil, err
	}
	if snap.Orders, err = m.loadOrders(ctx); err != nil {
		return nil, err
	}

	return &snap, nil
}

func (m *MySQLAdapter) loadUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, username, email, password_hash, address, age, contact_number, image
		FROM users WHERE snapshot = ? ORDER BY position`, m.name)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var age sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Address, &age, &u.ContactNumber, &u.Image); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if age.Valid {
			v := int(age.Int64)
			u.Age = &v
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (m *MySQLAdapter) loadProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, seller_id, title, description, price, category, image_urls, quantity, item_condition,
			brand, model, dimensions, weight, material, color, year_of_manufacture,
			original_packaging, manual_included, working_condition
		FROM products WHERE snapshot = ? ORDER BY position`, m.name)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var category, images string
		var year sql.NullInt64
		err := rows.Scan(&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price, &category, &images,
			&p.Quantity, &p.Condition, &p.Brand, &p.Model, &p.Dimensions, &p.Weight, &p.Material, &p.Color,
			&year, &p.OriginalPackaging, &p.ManualIncluded, &p.WorkingCondition)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := json.Unmarshal([]byte(images), &p.ImageURLs); err != nil {
			return nil, fmt.Errorf("decode images of %s: %w", p.ID, err)
		}
		p.Category = domain.Category(category)
		if year.Valid {
			v := int(year.Int64)
			p.YearOfManufacture = &v
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) loadCart(ctx context.Context) ([]domain.LineItem, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE snapshot = ? ORDER BY position`, m.name)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) loadOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, user_id, placed_at FROM orders WHERE snapshot = ? ORDER BY position`, m.name)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	var orders []domain.Order
	index := make(map[string]int)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Date = o.Date.UTC()
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := m.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity FROM order_items
		WHERE snapshot = ? ORDER BY order_id, position`, m.name)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var it domain.LineItem
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		i, ok := index[orderID]
		if !ok {
			continue
		}
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, itemRows.Err()
}

// Reset drops every row stored under this adapter's name.
func (m *MySQLAdapter) Reset(ctx context.Context) error {
	for _, table := range append([]string{"snapshots"}, childTables...) {
		column := "snapshot"
		if table == "snapshots" {
			column = "name"
		}
		if _, err := m.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+` = ?`, m.name); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
