package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	Mongo    *mongo.Client
	Database *mongo.Database
	Postgres *gorm.DB // nil when the audit store is disabled

	log zerolog.Logger
}

// InitDB connects to MongoDB and, when configured, PostgreSQL
func InitDB(cfg *Config, log zerolog.Logger) (*DB, error) {
	mongoClient, err := initMongo(cfg.Mongo.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).Msg("connected to MongoDB")

	db := &DB{
		Mongo:    mongoClient,
		Database: mongoClient.Database(cfg.Mongo.Database),
		log:      log,
	}

	if cfg.Postgres.ConnStr == "" {
		log.Info().Msg("POSTGRES_CONN_STR not set, reconciliation runs will not be recorded")
		return db, nil
	}

	postgresDB, err := initPostgres(cfg.Postgres.ConnStr)
	if err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	db.Postgres = postgresDB
	log.Info().Msg("connected to PostgreSQL")
	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.log.Error().Err(err).Msg("error getting SQL DB from GORM")
		} else if err := sqlDB.Close(); err != nil {
			db.log.Error().Err(err).Msg("error closing PostgreSQL connection")
		} else {
			db.log.Info().Msg("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.log.Error().Err(err).Msg("error closing MongoDB connection")
		} else {
			db.log.Info().Msg("MongoDB connection closed")
		}
	}
}
