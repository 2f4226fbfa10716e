package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Users (economy fields only; auth lives elsewhere)
CREATE TABLE IF NOT EXISTS users (
    user_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(50) UNIQUE NOT NULL,
    experience BIGINT NOT NULL DEFAULT 0 CHECK (experience >= 0),
    last_reward TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
    equip_profile_pic UUID,
    equip_background UUID,
    equip_badges UUID[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Item definitions (catalog). Immutable after insert except availability.
CREATE TABLE IF NOT EXISTS items (
    item_id SERIAL PRIMARY KEY,
    item_name VARCHAR(100) UNIQUE NOT NULL,
    item_description TEXT NOT NULL DEFAULT '',
    thumbnail TEXT NOT NULL DEFAULT '',
    rarity VARCHAR(20) NOT NULL CHECK (rarity IN ('common','uncommon','rare','ultra_rare','legendary','unique')),
    kind JSONB NOT NULL,
    available BOOLEAN NOT NULL DEFAULT FALSE,
    pattern_count INTEGER NOT NULL DEFAULT 65536 CHECK (pattern_count > 0),
    attributes JSONB
);
CREATE INDEX IF NOT EXISTS idx_items_rarity_available ON items(rarity) WHERE available;

-- Minted drop instances. One owner at any instant; consumed is monotonic.
CREATE TABLE IF NOT EXISTS drops (
    drop_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    item_id INTEGER NOT NULL REFERENCES items(item_id),
    owner_id UUID NOT NULL REFERENCES users(user_id),
    pattern INTEGER NOT NULL,
    consumed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_drops_owner ON drops(owner_id);

-- Posts: only the reward slot and reactions belong to this core.
CREATE TABLE IF NOT EXISTS posts (
    post_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    thread_id UUID,
    author_id UUID NOT NULL REFERENCES users(user_id),
    body TEXT NOT NULL,
    post_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    reward_drop_id UUID UNIQUE REFERENCES drops(drop_id)
);
CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);

-- Append-only reaction list. A drop reacts to at most one post, ever.
CREATE TABLE IF NOT EXISTS post_reactions (
    post_id UUID NOT NULL REFERENCES posts(post_id),
    drop_id UUID NOT NULL UNIQUE REFERENCES drops(drop_id),
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (post_id, drop_id)
);

-- Trade offers. Item sets frozen at proposal time.
CREATE TABLE IF NOT EXISTS trade_offers (
    offer_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    sender_id UUID NOT NULL REFERENCES users(user_id),
    receiver_id UUID NOT NULL REFERENCES users(user_id),
    sender_items UUID[] NOT NULL,
    receiver_items UUID[] NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'proposed' CHECK (status IN ('proposed','accepted','declined','rescinded')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_trade_offers_sender ON trade_offers(sender_id);
CREATE INDEX IF NOT EXISTS idx_trade_offers_receiver ON trade_offers(receiver_id);
`
