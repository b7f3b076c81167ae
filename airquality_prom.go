package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"

	"github.com/alepar/airquality/airquality"
	"github.com/alepar/airquality/airthings/waveplus"
	"github.com/alepar/airquality/exporter"
	"github.com/alepar/airquality/monitor"
	"github.com/alepar/airquality/telemetry"
)

const programName = "airquality_exporter"

// CLI args
var (
	listenAddr   = flag.String("listen-address", ":8080", "The address to listen on for HTTP requests.")
	readInterval = flag.Duration("read-int", 60*time.Second, "time interval between sensor reads")
	scanDuration = flag.Duration("scan-dur", 5000*time.Millisecond, "scan duration")
	retries      = flag.Int("retries", 5, "max number of tries in case of BLE errors")
	useBle       = flag.Bool("ble", true, "scan for Airthings Wave Plus sensors over BLE")
	logLevel     = flag.String("log-level", "info", "log level (debug, info, warn, error)")

	mqttBroker      = flag.String("mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883; empty disables MQTT")
	mqttClientID    = flag.String("mqtt-client-id", programName, "MQTT client id")
	mqttTopicPrefix = flag.String("mqtt-topic-prefix", telemetry.DefaultTopicPrefix, "MQTT topic prefix for raw and state messages")
	mqttIngest      = flag.Bool("mqtt-ingest", true, "score raw snapshots published by sensor nodes to <prefix>/<device>/raw")
	haDiscovery     = flag.Bool("ha-discovery", true, "publish Home Assistant discovery configs")
)

func init() {
	// Add Go module build info.
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())
	prometheus.MustRegister(version.NewCollector(programName))

	//logging
	formatter := &log.TextFormatter{
		FullTimestamp: true,
	}
	log.SetFormatter(formatter)
}

func main() {
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid log level: %s", err)
	}
	log.SetLevel(level)

	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %s", err)
	}

	metrics := exporter.NewMetrics()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("failed to register metrics: %s", err)
	}

	mon := &monitor.Monitor{
		Estimator: airquality.Default(),
		Metrics:   metrics,
		Discovery: *haDiscovery,
	}

	var ingest *telemetry.Ingest
	if *mqttBroker != "" {
		client := newMqttClient(func() {
			// subscriptions do not survive a reconnect with a clean session
			if ingest != nil {
				go startIngest(ingest)
			}
		})
		mon.Publisher = telemetry.NewPublisher(client, *mqttTopicPrefix, telemetry.DefaultTimeout)
		if *mqttIngest {
			ingest = telemetry.NewIngest(client, *mqttTopicPrefix, mon.Ingested)
		}
		if err := connectMqtt(client); err != nil {
			log.Fatalf("failed to connect to mqtt broker: %s", err)
		}
		defer client.Disconnect(250)
	}

	go func() {
		// Expose the registered metrics via HTTP.
		http.Handle("/metrics", promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{
				// Opt into OpenMetrics to support exemplars.
				EnableOpenMetrics: true,
			},
		))
		log.Panic(http.ListenAndServe(*listenAddr, nil))
	}()
	log.Printf("serving metrics on %s/metrics", *listenAddr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*readInterval)
	defer ticker.Stop()
	for {
		if *useBle {
			scanAndReceive(mon)
		}
		select {
		case <-ticker.C:
		case sig := <-stop:
			log.Printf("received %s, shutting down", sig)
			if ingest != nil {
				if err := ingest.Stop(); err != nil {
					log.Errorf("failed to stop mqtt ingest: %s", err)
				}
			}
			return
		}
	}
}

func scanAndReceive(mon *monitor.Monitor) {
	// open BLE
	d, err := linux.NewDevice()
	if err != nil {
		log.Errorf("failed to open ble: %s", err)
		return
	}
	ble.SetDefaultDevice(d)
	defer ble.Stop()

	scanner := &waveplus.BleScanner{
		ScanDuration: *scanDuration,
		Retries:      *retries,
	}
	scored := mon.ScanAndReceive(scanner)
	log.Debugf("scored %d wave plus sensors", scored)
}

func startIngest(ingest *telemetry.Ingest) {
	if err := ingest.Start(); err != nil {
		log.Errorf("failed to start mqtt ingest: %s", err)
		return
	}
	log.Printf("listening for raw snapshots on %s", ingest.Topic())
}

func newMqttClient(onConnect func()) mqtt.Client {
	return mqtt.NewClient(mqttOptions(onConnect))
}

// mqttOptions turns off ordered delivery: ingest callbacks publish and wait
// on tokens, which would otherwise block every other subscription.
func mqttOptions(onConnect func()) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(*mqttBroker).
		SetClientID(*mqttClientID).
		SetUsername(os.Getenv("MQTT_USERNAME")).
		SetPassword(os.Getenv("MQTT_PASSWORD")).
		SetAutoReconnect(true).
		SetOrderMatters(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Errorf("mqtt connection lost: %s", err)
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			log.Printf("connected to mqtt broker %s", *mqttBroker)
			onConnect()
		})
}

func connectMqtt(client mqtt.Client) error {
	token := client.Connect()
	if !token.WaitTimeout(telemetry.DefaultTimeout) {
		return errors.Errorf("timed out connecting to %s", *mqttBroker)
	}
	return errors.Wrapf(token.Error(), "failed to connect to %s", *mqttBroker)
}
