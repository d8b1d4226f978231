package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrNotBlockAligned = errors.New("ciphertext is not block aligned")
	ErrBadPadding      = errors.New("invalid padding")
)

// EncryptCBC encrypts plaintext with AES-256-CBC and PKCS#7 padding and
// returns the standard-base64 encoding of the ciphertext. The vector is
// truncated to the cipher block size.
func EncryptCBC(plaintext, key, vector []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	if len(vector) < block.BlockSize() {
		return "", ErrBadVectorSize
	}
	iv := vector[:block.BlockSize()]

	padded := pkcs7Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptCBC reverses EncryptCBC. It fails closed on malformed base64,
// unaligned ciphertext and bad padding before returning any plaintext.
func DecryptCBC(encoded string, key, vector []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(vector) < block.BlockSize() {
		return nil, ErrBadVectorSize
	}
	iv := vector[:block.BlockSize()]

	if len(raw) == 0 || len(raw)%block.BlockSize() != 0 {
		return nil, ErrNotBlockAligned
	}

	plain := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, raw)

	return pkcs7Unpad(plain, block.BlockSize())
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	padLen := int(data[len(data)-1])
	if padLen < 1 || padLen > blockSize {
		return nil, ErrBadPadding
	}
	for i := len(data) - padLen; i < len(data); i++ {
		if data[i] != byte(padLen) {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-padLen], nil
}
