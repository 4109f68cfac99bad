package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	phone         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS freelancer_profiles (
	user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	bio     TEXT NOT NULL DEFAULT '',
	rating  REAL NOT NULL DEFAULT 0.0
);

CREATE TABLE IF NOT EXISTS client_profiles (
	user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS categories (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS skills (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS freelancer_skills (
	user_id  INTEGER NOT NULL REFERENCES freelancer_profiles(user_id) ON DELETE CASCADE,
	skill_id INTEGER NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, skill_id)
);

CREATE TABLE IF NOT EXISTS client_categories (
	user_id     INTEGER NOT NULL REFERENCES client_profiles(user_id) ON DELETE CASCADE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, category_id)
);

CREATE TABLE IF NOT EXISTS services (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	freelancer_id INTEGER NOT NULL REFERENCES freelancer_profiles(user_id) ON DELETE CASCADE,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	price         REAL NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS service_categories (
	service_id  INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (service_id, category_id)
);

CREATE TABLE IF NOT EXISTS proposals (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id      INTEGER NOT NULL REFERENCES client_profiles(user_id) ON DELETE CASCADE,
	freelancer_id  INTEGER NOT NULL REFERENCES freelancer_profiles(user_id) ON DELETE CASCADE,
	service_id     INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
	proposed_price REAL NOT NULL,
	status         TEXT NOT NULL DEFAULT 'Pending',
	proposal_date  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS orders (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id     INTEGER NOT NULL REFERENCES client_profiles(user_id) ON DELETE CASCADE,
	service_id    INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
	order_date    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	delivery_date DATETIME NOT NULL,
	total_amount  REAL NOT NULL,
	status        TEXT NOT NULL DEFAULT 'Pending'
);

CREATE TABLE IF NOT EXISTS payments (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id              INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	user_id               INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status                TEXT NOT NULL DEFAULT 'Pending',
	amount                REAL NOT NULL,
	payment_date          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	khalti_token          TEXT,
	khalti_transaction_id TEXT,
	is_verified           BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reviews (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	freelancer_id INTEGER NOT NULL REFERENCES freelancer_profiles(user_id) ON DELETE CASCADE,
	client_id     INTEGER NOT NULL REFERENCES client_profiles(user_id) ON DELETE CASCADE,
	message       TEXT NOT NULL DEFAULT '',
	rating        INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS password_reset_tokens (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	token      TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL,
	used       BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id   TEXT NOT NULL,
	receiver_id TEXT NOT NULL,
	content     TEXT NOT NULL,
	timestamp   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_pair
	ON chat_messages (sender_id, receiver_id, timestamp);
`
