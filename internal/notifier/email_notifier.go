package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/shopspring/decimal"

	config "github.com/Jonas-spec/soko/configs"
)

func sesClient() (*ses.Client, config.EmailConfig, error) {
	cfg := config.LoadEmailConfig()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	if cfg.SenderEmail == "" {
		return nil, cfg, fmt.Errorf("sender email address is not configured in environment variables")
	}

	return ses.NewFromConfig(awsCfg), cfg, nil
}

func sendEmail(client *ses.Client, sender, recipient, subject, bodyHTML, bodyText string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(sender),
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
			},
		},
	}

	_, err := client.SendEmail(context.TODO(), input)
	return err
}

// SendOrderEmail mails the checkout confirmation.
func SendOrderEmail(recipientEmail string, customerName string, orderID uint, total decimal.Decimal) error {
	if recipientEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	client, cfg, err := sesClient()
	if err != nil {
		log.Printf("Failed to prepare SES client for email to %s (order %d): %v", recipientEmail, orderID, err)
		return err
	}

	subject := fmt.Sprintf("Order #%d Confirmation - Thank You for Your Purchase!", orderID)

	totalStr := total.StringFixed(2)

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>Thank you for your order! Your order #%d has been successfully placed.</p>
            <p><strong>Order Details:</strong></p>
            <ul>
                <li>Order ID: %d</li>
                <li>Total Amount: USD %s</li>
            </ul>
            <p>We'll send you another email when your order ships.</p>
            <p>Best regards,</p>
            <p>The Soko Team</p>
        </body>
        </html>`, customerName, orderID, orderID, totalStr)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! Your order #%d has been successfully placed.\n\n"+
			"Order Details:\nOrder ID: %d\nTotal Amount: USD %s\n\n"+
			"We'll send you another email when your order ships.\n\nBest regards,\nThe Soko Team",
		customerName, orderID, orderID, totalStr)

	if err := sendEmail(client, cfg.SenderEmail, recipientEmail, subject, bodyHTML, bodyText); err != nil {
		log.Printf("Failed to send email for order %d to %s: %v", orderID, recipientEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Order confirmation email sent successfully for order %d to %s", orderID, recipientEmail)
	return nil
}

// SendPasswordResetEmail mails a single-use reset token.
func SendPasswordResetEmail(recipientEmail string, customerName string, token string) error {
	if recipientEmail == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	client, cfg, err := sesClient()
	if err != nil {
		log.Printf("Failed to prepare SES client for password reset to %s: %v", recipientEmail, err)
		return err
	}

	subject := "Reset your Soko password"

	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>We received a request to reset your password. Use the token below within one hour:</p>
            <p><strong>%s</strong></p>
            <p>If you did not request this, you can ignore this email.</p>
            <p>Best regards,</p>
            <p>The Soko Team</p>
        </body>
        </html>`, customerName, token)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nWe received a request to reset your password. Use the token below within one hour:\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n\nBest regards,\nThe Soko Team",
		customerName, token)

	if err := sendEmail(client, cfg.SenderEmail, recipientEmail, subject, bodyHTML, bodyText); err != nil {
		log.Printf("Failed to send password reset email to %s: %v", recipientEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
