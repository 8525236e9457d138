package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"phone-order-api/config"
	"phone-order-api/events"
	"phone-order-api/middleware"
	"phone-order-api/notify"
	"phone-order-api/routes"
	"phone-order-api/seed"
	"phone-order-api/voice"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the REST API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "seed", Usage: "load the demo catalog when the tables are empty"},
		},
		Action: func(c *cli.Context) error {
			setGinMode()
			if err := config.InitDB(); err != nil {
				return err
			}
			if c.Bool("seed") {
				if _, err := seed.Run(config.DB); err != nil {
					return err
				}
			}

			dispatcher, closeEvents, err := orderEvents()
			if err != nil {
				return err
			}
			defer closeEvents()
			config.Events = dispatcher

			handler := routes.WithCORS(routes.NewRouter(), config.App.CORSOrigins)
			return listen(c.Context, ":"+config.App.Port, handler)
		},
	}
}

func voiceCommand() *cli.Command {
	return &cli.Command{
		Name:  "voice",
		Usage: "run the inbound-call webhook server",
		Action: func(c *cli.Context) error {
			setGinMode()
			s := config.App
			if s.RetellAPIKey == "" || s.RetellAgentID == "" {
				return errors.New("RETELL_API_KEY and RETELL_AGENT_ID must be set")
			}
			registrar := voice.NewRetellClient(s.RetellBaseURL, s.RetellAPIKey, s.RetellAgentID)
			bridge := voice.NewBridge(registrar, s.SIPDomain, s.RetellAPIKey)
			router := bridge.Router(middleware.RequestID(), middleware.Logger())
			return listen(c.Context, ":"+s.WebhookPort, router)
		},
	}
}

func setGinMode() {
	if config.App.GinMode != "" {
		gin.SetMode(config.App.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// orderEvents assembles the configured dispatchers. The returned func releases them.
func orderEvents() (events.Dispatcher, func(), error) {
	var (
		multi   events.Multi
		closers []func()
	)
	if config.App.AMQPURL != "" {
		publisher, err := events.DialAMQP(config.App.AMQPURL, config.App.OrderEventsExchange)
		if err != nil {
			return nil, nil, err
		}
		multi = append(multi, publisher)
		closers = append(closers, publisher.Close)
		log.WithField("exchange", config.App.OrderEventsExchange).Info("Publishing order events to RabbitMQ")
	}
	if config.App.SMSEnabled() {
		sender := notify.NewTwilioSender(config.App.TwilioAccountID, config.App.TwilioAuthToken, config.App.TwilioPhoneNumber)
		multi = append(multi, notify.NewSMS(sender))
		log.Info("Customer SMS notifications enabled")
	}

	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}
	if len(multi) == 0 {
		return events.Discard{}, closeAll, nil
	}
	return multi, closeAll, nil
}

// listen serves until SIGINT or SIGTERM, then drains in-flight requests.
func listen(parent context.Context, addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("Server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
