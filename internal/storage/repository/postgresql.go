// Package repository реализует хранилище данных на основе PostgreSQL
// для платформы подготовки к экзаменам. Предоставляет загрузку профиля
// доступа пользователя, работу с заданиями, каталогом, заказами и
// транзакционные операции регистрации подписки и подтверждения оплаты.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки отсутствия записей. Резолвер доступа различает отсутствие
// пользователя (внутренняя несогласованность) и отсутствие ресурса
// контекста (обычный отказ в доступе).
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrExamNotFound         = errors.New("exam not found")
	ErrPaperNotFound        = errors.New("paper not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'subscriptions'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table subscriptions missing or query error: %w", err)
	}
	return nil
}
