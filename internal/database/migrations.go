package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the schema DDL in apply order. Every statement is
// idempotent so the server can run them unconditionally at startup.
//
// The UNIQUE key on plans(user_id, plan_day) is load-bearing: it is the
// only thing preventing two concurrent creates from producing two plans
// for the same user and calendar day.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name                VARCHAR(120)  NOT NULL,
		email               VARCHAR(255)  NOT NULL,
		password_hash       VARCHAR(255)  NOT NULL,
		last_plan_id        BIGINT UNSIGNED NULL,
		current_plan_id     BIGINT UNSIGNED NULL,
		next_plan_id        BIGINT UNSIGNED NULL,
		total_tasks_done    INT UNSIGNED NOT NULL DEFAULT 0,
		sde_tasks_done      INT UNSIGNED NOT NULL DEFAULT 0,
		core_tasks_done     INT UNSIGNED NOT NULL DEFAULT 0,
		non_core_tasks_done INT UNSIGNED NOT NULL DEFAULT 0,
		total_rewards       INT UNSIGNED NOT NULL DEFAULT 0,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS plans (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		title      VARCHAR(255) NOT NULL,
		plan_date  DATETIME NOT NULL,
		plan_day   DATE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_plans_user_day (user_id, plan_day),
		KEY idx_plans_user_date (user_id, plan_date),
		CONSTRAINT fk_plans_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		plan_id                  BIGINT UNSIGNED NOT NULL,
		description              VARCHAR(500) NOT NULL,
		field                    ENUM('SDE','Core','Non-core') NOT NULL,
		completed                TINYINT(1) NOT NULL DEFAULT 0,
		is_rewarded              TINYINT(1) NOT NULL DEFAULT 0,
		completed_at             DATETIME NULL,
		expected_duration_hours  DOUBLE NOT NULL DEFAULT 0,
		position                 INT NOT NULL DEFAULT 0,
		KEY idx_tasks_plan (plan_id),
		CONSTRAINT fk_tasks_plan FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS follows (
		follower_id BIGINT UNSIGNED NOT NULL,
		followee_id BIGINT UNSIGNED NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (follower_id, followee_id),
		KEY idx_follows_followee (followee_id),
		CONSTRAINT fk_follows_follower FOREIGN KEY (follower_id) REFERENCES users(id),
		CONSTRAINT fk_follows_followee FOREIGN KEY (followee_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS posts (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		content    TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_posts_user_created (user_id, created_at),
		CONSTRAINT fk_posts_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		message    VARCHAR(1000) NOT NULL,
		apply_link VARCHAR(500) NULL,
		created_at DATETIME NOT NULL,
		deadline   DATETIME NOT NULL,
		KEY idx_notifications_deadline (deadline)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order. It stops at the first
// failure so a broken migration never leaves later tables half-created.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
