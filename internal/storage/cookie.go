package storage

// StagingCookieSuffix is appended to the session cookie name to name the
// cookie carrying the staged purchase
const StagingCookieSuffix = "_purchase"

// cookieStore spreads the client state over two cookies. The staged purchase
// is compressed into its own cookie so a large order cannot push the identity
// cookie past the browser size limit, and the other slots share the main one.
type cookieStore struct {
	main    *SessionStore
	staging *SessionStore
}

func (c *cookieStore) Get(key string) (string, bool, error) {
	if key != KeyPurchaseData {
		return c.main.Get(key)
	}

	raw, ok, err := c.staging.Get(key)
	if err != nil || !ok {
		return "", false, err
	}
	value, err := decompressValue(raw)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *cookieStore) Set(key, value string) error {
	return c.SetAll(map[string]string{key: value})
}

func (c *cookieStore) SetAll(values map[string]string) error {
	rest := make(map[string]string, len(values))
	for k, v := range values {
		if k == KeyPurchaseData {
			if err := c.staging.Set(k, compressValue(v)); err != nil {
				return err
			}
			continue
		}
		rest[k] = v
	}

	if len(rest) == 0 {
		return nil
	}
	return c.main.SetAll(rest)
}

func (c *cookieStore) Delete(keys ...string) error {
	rest := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == KeyPurchaseData {
			if err := c.staging.Delete(k); err != nil {
				return err
			}
			continue
		}
		rest = append(rest, k)
	}

	if len(rest) == 0 {
		return nil
	}
	return c.main.Delete(rest...)
}
